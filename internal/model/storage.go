package model

import "context"

// ReportSink stores migration audit artifacts.
type ReportSink interface {
	Put(ctx context.Context, key string, payload []byte) error
}
