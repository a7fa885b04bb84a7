package app

import (
	"context"
	"sync"

	"aerolabel/pkg/kafka"
	"aerolabel/pkg/logger"
)

// consumerWorker runs a Kafka consumer loop in the background until stopped.
type consumerWorker struct {
	consumer *kafka.Consumer
	log      *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newConsumerWorker(consumer *kafka.Consumer, log *logger.Logger) *consumerWorker {
	return &consumerWorker{
		consumer: consumer,
		log:      log,
	}
}

func (w *consumerWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		if err := w.consumer.Start(ctx); err != nil {
			w.log.Error("kafka consumer stopped with error", "error", err)
		}
	}()
}

func (w *consumerWorker) Stop() {
	w.once.Do(func() {
		if w.cancel == nil {
			return
		}
		w.cancel()
		<-w.done
		if err := w.consumer.Close(); err != nil {
			w.log.Error("failed to close kafka consumer", "error", err)
		}
	})
}
