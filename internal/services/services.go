package services

import (
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idgenerator"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/publisher"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"
)

type service struct {
	srv *Services
}

type Services struct {
	conf config.Config

	sqlRepo   repositories.SQLRepository
	cacheRepo repositories.CacheRepository
	tracker   idempotency.Tracker

	producer  publisher.DeliveryProducer
	outboxPub publisher.Publisher
	metrics   metrics.Metrics
	idGen     idgenerator.Generator

	common service

	Transaction *transactionProcessor
	Batch       *batchProcessor
	OutboxRelay *outboxRelay
	Generator   *eventGenerator
	Processing  *processingMetrics
}

func New(
	conf config.Config,
	sqlRepo repositories.SQLRepository,
	cacheRepo repositories.CacheRepository,
	tracker idempotency.Tracker,
	producer publisher.DeliveryProducer,
	outboxPub publisher.Publisher,
	metrics metrics.Metrics,
) *Services {
	srv := &Services{
		conf:      conf,
		sqlRepo:   sqlRepo,
		cacheRepo: cacheRepo,
		tracker:   tracker,
		producer:  producer,
		outboxPub: outboxPub,
		metrics:   metrics,
		idGen:     idgenerator.New(),
	}
	srv.common.srv = srv
	srv.Transaction = (*transactionProcessor)(&srv.common)
	srv.Batch = (*batchProcessor)(&srv.common)
	srv.OutboxRelay = (*outboxRelay)(&srv.common)
	srv.Generator = (*eventGenerator)(&srv.common)
	srv.Processing = (*processingMetrics)(&srv.common)

	return srv
}
