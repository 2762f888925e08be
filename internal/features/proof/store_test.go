package proof

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw-backend/internal/common/config"
)

type fakePutter struct {
	input   *s3.PutObjectInput
	body    []byte
	err     error
	deleted []string
}

func (f *fakePutter) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestInlineStoreReturnsImage(t *testing.T) {
	ref, err := NewInlineStore().Put(context.Background(), "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", ref)
}

func TestS3StoreUploadsDecodedImage(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3Store(putter, "slips", "/proofs/").(*s3Store)
	store.now = func() time.Time { return time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC) }

	ref, err := store.Put(context.Background(), "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "proofs/2025/03/14/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "slips", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("hello"), putter.body)
	assert.Equal(t, "s3://slips/"+key, ref)
}

func TestInlineStoreDiscardIsNoop(t *testing.T) {
	assert.NoError(t, NewInlineStore().Discard(context.Background(), "data:image/png;base64,aGVsbG8="))
}

func TestS3StoreDiscardDeletesUploadedObject(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3Store(putter, "slips", "proofs")
	ctx := context.Background()

	ref, err := store.Put(ctx, "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	require.NoError(t, store.Discard(ctx, ref))
	assert.Equal(t, []string{"slips/" + aws.ToString(putter.input.Key)}, putter.deleted)

	require.NoError(t, store.Discard(ctx, ""))
	require.NoError(t, store.Discard(ctx, "s3://other/proofs/x.png"))
	assert.Len(t, putter.deleted, 1)

	putter.err = errors.New("access denied")
	assert.Error(t, store.Discard(ctx, ref))
}

func TestS3StoreEmptyImage(t *testing.T) {
	putter := &fakePutter{}
	ref, err := NewS3Store(putter, "slips", "proofs").Put(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ref)
	assert.Nil(t, putter.input)
}

func TestS3StoreFailures(t *testing.T) {
	store := NewS3Store(&fakePutter{err: errors.New("access denied")}, "slips", "proofs")

	_, err := store.Put(context.Background(), "data:image/png;base64,aGVsbG8=")
	assert.ErrorIs(t, err, ErrUpload)

	_, err = store.Put(context.Background(), "not-a-data-url")
	assert.ErrorIs(t, err, ErrUpload)
}

func TestNewS3ClientWithEndpoint(t *testing.T) {
	cfg := &config.Config{}
	cfg.Proof.Region = "auto"
	cfg.Proof.Endpoint = "http://127.0.0.1:9000"
	cfg.Proof.AccessKey = "key"
	cfg.Proof.SecretKey = "secret"

	client, err := NewS3Client(context.Background(), cfg)
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "auto", opts.Region)
}
