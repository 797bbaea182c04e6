// Package influxdb provides optional write-latency telemetry for
// Rackview Core.
//
// It wraps the official influxdb-client-go v2 library: a non-blocking
// batched write API records how long each inventory write took and
// whether it committed. The operation log in SQLite remains the
// durable record; telemetry is advisory and lossy by design of the
// batching layer.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // disabled or unreachable; run without telemetry
//	}
//	defer client.Close()
//
//	client.WriteOperationLatency("device_create", 12.5, true)
package influxdb
