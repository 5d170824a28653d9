package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type fakeObjects struct {
	objects map[string]*s3.PutObjectInput
	bodies  map[string][]byte
	buckets map[string]bool
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		objects: map[string]*s3.PutObjectInput{},
		bodies:  map[string][]byte{},
		buckets: map[string]bool{"certs": true},
	}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = in
	f.bodies[key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	data, ok := f.bodies[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: f.objects[key].ContentType,
	}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	delete(f.objects, key)
	delete(f.bodies, key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjects) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if !f.buckets[aws.ToString(in.Bucket)] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestArtifactStore_PutGet(t *testing.T) {
	fake := newFakeObjects()
	store := newArtifactStore(fake, "certs")
	ctx := context.Background()

	doc := []byte("%PDF-1.4 test")
	require.NoError(t, store.Put(ctx, "certificates/0xabc.pdf", "application/pdf", doc))

	in := fake.objects["certs/certificates/0xabc.pdf"]
	require.NotNil(t, in)
	assert.Equal(t, int64(len(doc)), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "application/pdf", aws.ToString(in.ContentType))

	data, contentType, err := store.Get(ctx, "certificates/0xabc.pdf")
	require.NoError(t, err)
	assert.Equal(t, doc, data)
	assert.Equal(t, "application/pdf", contentType)
}

func TestArtifactStore_GetMissing(t *testing.T) {
	store := newArtifactStore(newFakeObjects(), "certs")

	_, _, err := store.Get(context.Background(), "certificates/missing.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestArtifactStore_PutError(t *testing.T) {
	fake := newFakeObjects()
	fake.putErr = errors.New("access denied")
	store := newArtifactStore(fake, "certs")

	err := store.Put(context.Background(), "k", "application/pdf", []byte("x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestArtifactStore_Delete(t *testing.T) {
	fake := newFakeObjects()
	store := newArtifactStore(fake, "certs")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "certificates/0xabc.pdf", "application/pdf", []byte("%PDF")))
	require.NoError(t, store.Delete(ctx, "certificates/0xabc.pdf"))

	_, _, err := store.Get(ctx, "certificates/0xabc.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.NoError(t, store.Delete(ctx, "certificates/0xabc.pdf"))
}

func TestArtifactStore_Ping(t *testing.T) {
	fake := newFakeObjects()

	assert.NoError(t, newArtifactStore(fake, "certs").Ping(context.Background()))

	err := newArtifactStore(fake, "missing").Ping(context.Background())
	require.Error(t, err)
	var notFound *types.NotFound
	assert.ErrorAs(t, err, &notFound)
}
