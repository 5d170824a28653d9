// @title                      BlockVerify API
// @version                    1.0
// @description                Certificate ledger, session store and verification simulator.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.2 init --dir ../.. --generalInfo cmd/blockverify/main.go --output ../../docs --outputTypes go

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "blockverify"

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "BlockVerify certificate API",
	Long:          "BlockVerify registers certificates in a ledger and answers verification requests for them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
