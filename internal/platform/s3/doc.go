// Package s3 stores copies of the emc registry in Hetzner Object Storage
// (S3-compatible).
//
// Client is a thin wrapper over the AWS SDK that maps missing buckets and
// keys onto errs.NotFound. Backup pairs a Client with a bucket and key and
// is what "emc registry backup|restore" drives.
package s3
