package list

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/internal/testutil"
)

func seeded(n int) *testutil.MemoryS3 {
	m := testutil.NewMemoryS3("bucket")
	m.SeedKeys("bucket", testutil.GenerateKeys("p/", n)...)
	return m
}

func TestLister_Pages(t *testing.T) {
	tests := []struct {
		name     string
		objects  int
		pageSize int32
		pages    []int
	}{
		{"empty prefix listing", 0, 10, nil},
		{"single page", 3, 10, []int{3}},
		{"exact pages", 4, 2, []int{2, 2}},
		{"short last page", 5, 2, []int{2, 2, 1}},
		{"default page size", 1500, 0, []int{1000, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seeded(tt.objects)
			l := New(m)

			var sizes []int
			var keys []string
			for page, err := range l.Pages(context.Background(), &Config{Bucket: "bucket", Prefix: "p/", PageSize: tt.pageSize}) {
				require.NoError(t, err)
				sizes = append(sizes, len(page))
				for _, obj := range page {
					keys = append(keys, obj.Key)
				}
			}

			assert.Equal(t, tt.pages, sizes)
			if tt.objects > 0 {
				assert.Equal(t, testutil.GenerateKeys("p/", tt.objects), keys)
			}
		})
	}
}

func TestLister_PagesIsRestartable(t *testing.T) {
	m := seeded(5)
	seq := New(m).Objects(context.Background(), &Config{Bucket: "bucket", Prefix: "p/", PageSize: 2})

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}

	assert.Equal(t, 5, count())
	assert.Equal(t, 5, count())
	assert.Equal(t, 6, m.Calls(testutil.OpListObjects))
}

func TestLister_PassesContinuationToken(t *testing.T) {
	var tokens []string
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			tokens = append(tokens, aws.ToString(in.ContinuationToken))
			switch aws.ToString(in.ContinuationToken) {
			case "":
				return &s3.ListObjectsV2Output{
					Contents:              []awstypes.Object{{Key: aws.String("a")}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("t1"),
				}, nil
			case "t1":
				return &s3.ListObjectsV2Output{
					Contents:    []awstypes.Object{{Key: aws.String("b"), Size: aws.Int64(7)}},
					IsTruncated: aws.Bool(false),
				}, nil
			}
			return nil, stderrors.New("unexpected token")
		},
	}

	objects, err := New(mock).Collect(context.Background(), &Config{Bucket: "bucket"})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "b", objects[1].Key)
	assert.Equal(t, int64(7), objects[1].Size)
	assert.Equal(t, []string{"", "t1"}, tokens)
}

func TestLister_ErrorYieldedOnce(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			if calls == 1 {
				return &s3.ListObjectsV2Output{
					Contents:              []awstypes.Object{{Key: aws.String("a")}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("t1"),
				}, nil
			}
			return nil, &awstypes.NoSuchBucket{}
		},
	}

	var errs []error
	var pages int
	for page, err := range New(mock).Pages(context.Background(), &Config{Bucket: "bucket"}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pages++
		assert.Len(t, page, 1)
	}

	assert.Equal(t, 1, pages)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errors.ErrBucketNotFound)
	assert.Equal(t, 2, calls)
}

func TestLister_TruncatedWithoutToken(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(true)}, nil
		},
	}

	_, err := New(mock).Collect(context.Background(), &Config{Bucket: "bucket"})
	assert.Error(t, err)
}

func TestLister_SkipsEmptyPages(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			if calls == 1 {
				return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(true), NextContinuationToken: aws.String("t")}, nil
			}
			return &s3.ListObjectsV2Output{Contents: []awstypes.Object{{Key: aws.String("x")}}}, nil
		},
	}

	page, err := New(mock).First(context.Background(), &Config{Bucket: "bucket"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "x", page[0].Key)
}

func TestLister_FirstStopsAfterOnePage(t *testing.T) {
	m := seeded(10)
	page, err := New(m).First(context.Background(), &Config{Bucket: "bucket", Prefix: "p/", PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.Equal(t, 1, m.Calls(testutil.OpListObjects))

	page, err = New(m).First(context.Background(), &Config{Bucket: "bucket", Prefix: "none/"})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestLister_KeyExists(t *testing.T) {
	m := testutil.NewMemoryS3("bucket")
	m.SeedKeys("bucket", "data/report.csv.bak", "data/report.csv2", "data/x")
	l := New(m)
	ctx := context.Background()

	exists, err := l.KeyExists(ctx, "bucket", "data/report.csv")
	require.NoError(t, err)
	assert.False(t, exists, "a longer key sharing the prefix is not a match")

	m.SeedKeys("bucket", "data/report.csv")
	exists, err = l.KeyExists(ctx, "bucket", "data/report.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = l.KeyExists(ctx, "bucket", "data/")
	require.NoError(t, err)
	assert.False(t, exists)
}
