package cloudantclient

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glynnbird/cloudantclient/mock"
)

func TestMetricsCollectorRecordsExchanges(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	server := mock.NewServer()
	defer server.Close()

	client := newTestClient(t, server.URL, WithMetrics(collector))
	if _, err := client.Request(context.Background(), RequestDescription{Path: "/_all_dbs"}); err != nil {
		t.Fatalf("Request: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"cloudantclient_exchanges_total",
		"cloudantclient_exchange_duration_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
}

func TestMetricsCollectorLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	collector.exchangeCompleted("GET", 200, 5*time.Millisecond)
	collector.tokenRefresh("ok")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "cloudantclient_exchanges_total" {
			continue
		}
		metric := mf.GetMetric()
		if len(metric) != 1 {
			t.Fatalf("metric count = %d", len(metric))
		}
		labels := make(map[string]string)
		for _, lp := range metric[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["method"] != "GET" || labels["status"] != "200" {
			t.Errorf("labels = %v", labels)
		}
		return
	}
	t.Error("cloudantclient_exchanges_total not gathered")
}
