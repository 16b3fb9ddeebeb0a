// Package s3batch provides a bucket-scoped client for batch file operations
// against S3-compatible object stores.
//
// A single call such as Download, Copy, Move or Remove lists the objects
// under a prefix and fans the per-object work out under a concurrency limit
// owned by the client. Each object gets its own s3types.Outcome, so one
// failing object never aborts its siblings.
//
// Key features:
//   - Bucket selection validated against the account's bucket list
//   - Lazy, restartable pagination with iter.Seq2
//   - Bounded concurrency shared by every batch call of a client
//   - Parallel or sequential scheduling of the tasks of one batch
//   - Chunked bulk deletion in batches of at most 1000 keys
//   - Ordered ranged downloads of a single object
//   - Presigned GET URLs for every object under a prefix
//
// Example usage:
//
//	client, err := s3batch.New(
//	    s3batch.WithRegion("eu-central-1"),
//	    s3batch.WithConcurrency(10),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := client.SelectBucket(ctx, "my-bucket"); err != nil {
//	    return err
//	}
//
//	outcomes, err := client.Download(ctx, "reports/2024/", "/tmp/reports", false)
//	if err != nil {
//	    return err
//	}
//	for _, o := range outcomes {
//	    if !o.OK() {
//	        log.Printf("%s: %v", o.Key, o.Err)
//	    }
//	}
package s3batch
