package list

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3batch/errors"
	"github.com/input-output-hk/s3batch/s3types"
)

// MaxPageSize is the largest page S3 returns for one ListObjectsV2 call.
const MaxPageSize int32 = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister handles listing of S3 objects.
type Lister struct {
	client S3Interface
}

// New creates a new Lister.
func New(client S3Interface) *Lister {
	return &Lister{
		client: client,
	}
}

// Config holds configuration for list operations.
type Config struct {
	Bucket   string
	Prefix   string
	PageSize int32
}

// Result represents one page of a list operation.
type Result struct {
	Objects           []s3types.Object
	IsTruncated       bool
	ContinuationToken *string
}

// Paginator walks the pages of one listing. A Paginator is single-use;
// create a new one to start over.
type Paginator struct {
	client            S3Interface
	config            *Config
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// NewPaginator creates a paginator positioned before the first page.
func (l *Lister) NewPaginator(config *Config) *Paginator {
	return &Paginator{
		client:    l.client,
		config:    config,
		pageSize:  optimalPageSize(config),
		firstPage: true,
	}
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Result, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.config.Bucket),
		Prefix:  aws.String(p.config.Prefix),
		MaxKeys: aws.Int32(p.pageSize),
	}

	if !p.firstPage {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects page: %w", errors.FromAWS(err))
	}

	p.firstPage = false
	p.hasMorePages = aws.ToBool(output.IsTruncated)
	p.continuationToken = output.NextContinuationToken

	// A truncated page without a token cannot be continued.
	if p.hasMorePages && p.continuationToken == nil {
		return nil, fmt.Errorf("list objects page: truncated response without continuation token")
	}

	return convertOutput(output), nil
}

// Pages returns the non-empty pages under config.Prefix in collaborator order.
// Every range over the returned sequence starts a fresh pagination cycle.
// A failed page call yields its error once and ends the sequence.
func (l *Lister) Pages(ctx context.Context, config *Config) iter.Seq2[[]s3types.Object, error] {
	return func(yield func([]s3types.Object, error) bool) {
		paginator := l.NewPaginator(config)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page.Objects) == 0 {
				continue
			}
			if !yield(page.Objects, nil) {
				return
			}
		}
	}
}

// Objects flattens Pages into individual objects without reordering them.
func (l *Lister) Objects(ctx context.Context, config *Config) iter.Seq2[s3types.Object, error] {
	return func(yield func(s3types.Object, error) bool) {
		for page, err := range l.Pages(ctx, config) {
			if err != nil {
				yield(s3types.Object{}, err)
				return
			}
			for _, obj := range page {
				if !yield(obj, nil) {
					return
				}
			}
		}
	}
}

// First returns the first non-empty page, or nil when nothing matches.
// Pagination stops as soon as a non-empty page is seen.
func (l *Lister) First(ctx context.Context, config *Config) ([]s3types.Object, error) {
	for page, err := range l.Pages(ctx, config) {
		return page, err
	}
	return nil, nil
}

// Collect drains Objects into a slice.
func (l *Lister) Collect(ctx context.Context, config *Config) ([]s3types.Object, error) {
	var objects []s3types.Object
	for obj, err := range l.Objects(ctx, config) {
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// convertOutput converts S3 output to our Result type.
func convertOutput(output *s3.ListObjectsV2Output) *Result {
	result := &Result{
		Objects:           make([]s3types.Object, 0, len(output.Contents)),
		IsTruncated:       aws.ToBool(output.IsTruncated),
		ContinuationToken: output.NextContinuationToken,
	}

	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return result
}

// optimalPageSize determines the page size for pagination.
func optimalPageSize(config *Config) int32 {
	if config.PageSize > 0 && config.PageSize <= MaxPageSize {
		return config.PageSize
	}
	// Default to maximum for efficiency
	return MaxPageSize
}

// KeyExists reports whether an object with exactly this key exists.
// S3 lists keys in binary order, so an exact match is always the first
// entry under a prefix equal to the key; one single-entry page suffices.
func (l *Lister) KeyExists(ctx context.Context, bucket, key string) (bool, error) {
	page, err := l.NewPaginator(&Config{Bucket: bucket, Prefix: key, PageSize: 1}).NextPage(ctx)
	if err != nil {
		return false, err
	}
	return len(page.Objects) > 0 && page.Objects[0].Key == key, nil
}
