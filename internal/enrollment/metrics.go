package enrollment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursemarket_enrollment_resolutions_total",
		Help: "Количество построений списка 'Мои курсы' по источнику (server, local, failed).",
	}, []string{"source"})

	enrollOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursemarket_enroll_outcomes_total",
		Help: "Результаты записи на курс (enrolled, already_enrolled, pending_sync).",
	}, []string{"status"})

	localCacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursemarket_local_cache_errors_total",
		Help: "Проглоченные ошибки локального кэша записей по операции.",
	}, []string{"op"})
)
