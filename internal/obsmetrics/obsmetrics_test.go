package obsmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordParse_DoesNotPanic(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordParse(ctx, "python", 10*time.Millisecond, 5, false)
		RecordParse(ctx, "python", 10*time.Millisecond, 0, true)
	})
}

func TestRecordIndexSaveAndSearch_DoNotPanic(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordIndexSave(ctx, false, time.Millisecond)
		RecordIndexSave(ctx, true, time.Millisecond)
		RecordSearch(ctx, "search_symbols", time.Millisecond, 3)
		RecordSchemaFuture(ctx)
	})
}

func TestInitInstruments_NoError(t *testing.T) {
	assert.NoError(t, initErr)
}
