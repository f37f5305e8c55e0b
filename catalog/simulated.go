package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// simulatedBucket is the fixed bucket the simulated-data path lists
// directly, bypassing CMR entirely (original_source/datagen/S3List.py:
// get_s3_uris_sim).
const simulatedBucket = "confluence-swot"

// ListSimulatedGranules lists every object in the simulated-data bucket
// via a plain S3 ListObjectsV2 call, authenticating with creds rather
// than running the EDL login redirect dance — the -o/--simulated path a
// dev run takes when there's no live CMR collection to query against.
// Unlike GranuleLister.List, it applies no continent filter: the
// original's simulated branch doesn't apply one either.
func ListSimulatedGranules(ctx context.Context, creds *Credentials) ([]string, error) {
	client := s3.New(s3.Options{
		Region: "us-west-2",
		Credentials: awscreds.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
		),
	})

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(simulatedBucket),
		MaxKeys: aws.Int32(1000),
	})
	if err != nil {
		return nil, fmt.Errorf("listing simulated bucket %s: %w", simulatedBucket, err)
	}

	uris := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		uris = append(uris, fmt.Sprintf("s3://%s/%s", simulatedBucket, aws.ToString(obj.Key)))
	}
	NaturalSortStrings(uris)
	return uris, nil
}
