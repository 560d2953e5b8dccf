// Package metrics provides Prometheus metrics for the drive client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Remote API metrics
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_remote_calls_total",
			Help: "Total number of remote API calls",
		},
		[]string{"operation", "status"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_remote_call_duration_seconds",
			Help:    "Remote API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	serverOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drive_server_online",
			Help: "1 when the last remote call reached the server",
		},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_notifications_total",
			Help: "Total notifications dispatched, by type",
		},
		[]string{"type"},
	)

	notificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_notifications_dropped_total",
			Help: "Notifications dropped for slow subscribers",
		},
	)

	// Transfer metrics
	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_bytes_downloaded_total",
			Help: "Total bytes downloaded from the server",
		},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_bytes_uploaded_total",
			Help: "Total bytes uploaded to the server",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_uploads_total",
			Help: "Upload outcomes",
		},
		[]string{"status"},
	)

	// Offline metrics
	offlineFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drive_offline_files",
			Help: "Number of files marked available offline",
		},
	)

	// Offline storage backend metrics
	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_storage_operation_duration_seconds",
			Help:    "Offline storage operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_storage_operations_total",
			Help: "Total offline storage operations",
		},
		[]string{"backend", "operation", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRemoteCall records a remote API call and its final HTTP status (0 when
// the server was not reached).
func RecordRemoteCall(operation string, status int, duration time.Duration) {
	remoteCallsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	remoteCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetServerOnline records server reachability.
func SetServerOnline(online bool) {
	if online {
		serverOnline.Set(1)
		return
	}
	serverOnline.Set(0)
}

// RecordNotification counts a dispatched notification.
func RecordNotification(notificationType string) {
	notificationsTotal.WithLabelValues(notificationType).Inc()
}

// RecordNotificationDropped counts a notification dropped for a slow subscriber.
func RecordNotificationDropped() {
	notificationsDropped.Inc()
}

// RecordDownload records downloaded bytes.
func RecordDownload(bytes int64) {
	bytesDownloaded.Add(float64(bytes))
}

// RecordUpload records an upload outcome ("succeeded", "conflicted", "failed").
func RecordUpload(status string, bytes int64) {
	uploadsTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		bytesUploaded.Add(float64(bytes))
	}
}

// SetOfflineFiles sets the number of files available offline.
func SetOfflineFiles(count int) {
	offlineFiles.Set(float64(count))
}

// RecordStorageOperation records an offline storage backend operation.
func RecordStorageOperation(backend, operation string, duration time.Duration, success bool) {
	storageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	storageOperationsTotal.WithLabelValues(backend, operation, statusLabel(success)).Inc()
}
