// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package obsmetrics holds the OpenTelemetry instruments shared across the
// parser, index store, and query tools: parse latency, parse errors,
// symbols extracted, index save latency, search latency, and a counter for
// refused future-schema loads.
package obsmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("codeindex")

var (
	parseLatency      metric.Float64Histogram
	parseErrors       metric.Int64Counter
	symbolsExtracted  metric.Int64Histogram
	indexSaveLatency  metric.Float64Histogram
	searchLatency     metric.Float64Histogram
	schemaFutureTotal metric.Int64Counter

	initErr error
)

func init() {
	initErr = initInstruments()
}

func initInstruments() error {
	var err error

	if parseLatency, err = meter.Float64Histogram(
		"codeindex_parse_duration_seconds",
		metric.WithDescription("Duration of one file's symbol extraction"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if parseErrors, err = meter.Int64Counter(
		"codeindex_parse_errors_total",
		metric.WithDescription("Total parse failures across all language adapters"),
	); err != nil {
		return err
	}

	if symbolsExtracted, err = meter.Int64Histogram(
		"codeindex_symbols_extracted",
		metric.WithDescription("Number of symbols extracted per parsed file"),
	); err != nil {
		return err
	}

	if indexSaveLatency, err = meter.Float64Histogram(
		"codeindex_index_save_duration_seconds",
		metric.WithDescription("Duration of a save or incremental_save call"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if searchLatency, err = meter.Float64Histogram(
		"codeindex_search_duration_seconds",
		metric.WithDescription("Duration of a search_symbols or search_text call"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if schemaFutureTotal, err = meter.Int64Counter(
		"codeindex_schema_future_total",
		metric.WithDescription("Total manifest loads refused for a future schema version"),
	); err != nil {
		return err
	}

	return nil
}

// RecordParse records one adapter invocation's latency, symbol count, and
// success/failure.
func RecordParse(ctx context.Context, language string, duration time.Duration, symbolCount int, failed bool) {
	if initErr != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("language", language))
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	if failed {
		parseErrors.Add(ctx, 1, attrs)
		return
	}
	symbolsExtracted.Record(ctx, int64(symbolCount), attrs)
}

// RecordIndexSave records one save or incremental_save call's latency.
func RecordIndexSave(ctx context.Context, incremental bool, duration time.Duration) {
	if initErr != nil {
		return
	}
	indexSaveLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("incremental", incremental)))
}

// RecordSearch records one search_symbols or search_text call's latency.
func RecordSearch(ctx context.Context, kind string, duration time.Duration, resultCount int) {
	if initErr != nil {
		return
	}
	searchLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("kind", kind), attribute.Int("result_count", resultCount)))
}

// RecordSchemaFuture increments the refused-future-schema counter.
func RecordSchemaFuture(ctx context.Context) {
	if initErr != nil {
		return
	}
	schemaFutureTotal.Add(ctx, 1)
}
