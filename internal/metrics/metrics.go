// metrics — Prometheus-метрики ингеста, классификации, ретеншна и выдачи.
// Все методы безопасны на nil-получателе: сервис можно собрать без метрик (тесты).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pulse_reader"

// Исходы обработки статьи.
const (
	ArticleCreated      = "created"
	ArticleDuplicate    = "duplicate"
	ArticleUnclassified = "unclassified"
	ArticleFailed       = "failed"
)

type Metrics struct {
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	articles        *prometheus.CounterVec
	sourcesFailed   prometheus.Counter
	classifierCalls *prometheus.CounterVec
	retentionDelete prometheus.Counter
	blockedItems    prometheus.Counter
	feedRounds      prometheus.Histogram
}

// New регистрирует метрики в reg. Для глобального реестра — prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_cycles_total",
			Help:      "Ingestion cycles by result (ok|aborted).",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_cycle_duration_seconds",
			Help:      "Wall time of one ingestion cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_articles_total",
			Help:      "Ingested feed items by outcome.",
		}, []string{"outcome"}),
		sourcesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_sources_failed_total",
			Help:      "Sources that failed to fetch or parse.",
		}),
		classifierCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_calls_total",
			Help:      "Classifier calls by result.",
		}, []string{"result"}),
		retentionDelete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_deleted_articles_total",
			Help:      "Articles removed by the retention sweeper.",
		}),
		blockedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_blocked_items_total",
			Help:      "Articles hidden by user blocklists.",
		}),
		feedRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_overfetch_rounds",
			Help:      "Store round-trips per personalized page.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cycles,
			m.cycleDuration,
			m.articles,
			m.sourcesFailed,
			m.classifierCalls,
			m.retentionDelete,
			m.blockedItems,
			m.feedRounds,
		)
	}

	return m
}

func (m *Metrics) ObserveCycle(aborted bool, d time.Duration) {
	if m == nil {
		return
	}

	result := "ok"
	if aborted {
		result = "aborted"
	}

	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

func (m *Metrics) IncArticle(outcome string) {
	if m == nil {
		return
	}

	m.articles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSourceFailed() {
	if m == nil {
		return
	}

	m.sourcesFailed.Inc()
}

// IncClassifier учитывает вызов классификатора; result — "ok" или класс ошибки.
func (m *Metrics) IncClassifier(result string) {
	if m == nil {
		return
	}

	m.classifierCalls.WithLabelValues(result).Inc()
}

func (m *Metrics) AddRetentionDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.retentionDelete.Add(float64(n))
}

func (m *Metrics) ObserveFeed(rounds, blocked int) {
	if m == nil {
		return
	}

	m.feedRounds.Observe(float64(rounds))
	if blocked > 0 {
		m.blockedItems.Add(float64(blocked))
	}
}
