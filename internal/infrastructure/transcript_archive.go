package infrastructure

import (
	"context"
	"fmt"

	"hirematrix-backend/internal/domain"
)

type jsonBucket interface {
	PutJSON(ctx context.Context, key string, v interface{}) error
}

// TranscriptArchive stores one JSON object per turn under
// transcripts/<tenant>/<interview>/<turn>.json.
type TranscriptArchive struct {
	bucket jsonBucket
}

func NewTranscriptArchive(bucket jsonBucket) *TranscriptArchive {
	return &TranscriptArchive{bucket: bucket}
}

func TranscriptPrefix(tenantID, interviewID string) string {
	return fmt.Sprintf("transcripts/%s/%s/", tenantID, interviewID)
}

func (a *TranscriptArchive) Archive(ctx context.Context, entry domain.TranscriptEntry) (string, error) {
	prefix := TranscriptPrefix(entry.TenantID, entry.InterviewID)
	key := fmt.Sprintf("%s%04d.json", prefix, entry.Turn)
	if err := a.bucket.PutJSON(ctx, key, entry); err != nil {
		return "", err
	}
	return prefix, nil
}
