package bootstrapdata

import (
	"context"
	_ "embed"
	"fmt"

	"isizulu-corpus/backend/internal/domain/corpus"
	"isizulu-corpus/backend/internal/service/activity"
	"isizulu-corpus/backend/internal/service/transfer"
)

//go:embed initial_entries.json
var initialEntries []byte

// Importer 是种子数据写入所需的导入能力，由 transfer.Service 实现。
type Importer interface {
	Import(ctx context.Context, actor activity.Actor, records []corpus.EntryPayload) (transfer.Result, error)
}

// Counter 统计已有词条数量（包含已软删除的），用于判断是否需要种子数据。
type Counter interface {
	CountAll(ctx context.Context) (int64, error)
}

// InitialRecords 解析内置的种子词条。
func InitialRecords() ([]corpus.EntryPayload, error) {
	records, err := transfer.DecodeRecords(initialEntries)
	if err != nil {
		return nil, fmt.Errorf("decode initial entries: %w", err)
	}
	return records, nil
}

// Seed 通过导入流程写入内置词条，返回写入数量。重复执行会重复写入。
func Seed(ctx context.Context, importer Importer) (int, error) {
	records, err := InitialRecords()
	if err != nil {
		return 0, err
	}
	result, err := importer.Import(ctx, activity.Actor{}, records)
	if err != nil {
		return 0, fmt.Errorf("seed entries: %w", err)
	}
	return result.Imported, nil
}

// SeedIfEmpty 仅在词条表为空时执行 Seed。
func SeedIfEmpty(ctx context.Context, counter Counter, importer Importer) (int, error) {
	total, err := counter.CountAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	if total > 0 {
		return 0, nil
	}
	return Seed(ctx, importer)
}
