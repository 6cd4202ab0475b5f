package consumer

import (
	"context"
	"fmt"

	"github.com/francois202/gigabanksystem1-sub000/cmd/setup"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"

	kafkaconsumer "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/consumer/kafka"
)

const NameBatch = "batch"

// Names lists every consumer the run command accepts.
var Names = []string{
	kafkaconsumer.AtMostOncePolicy.Name,
	kafkaconsumer.AtLeastOncePolicy.Name,
	kafkaconsumer.ExactlyOncePolicy.Name,
	kafkaconsumer.RetryDLTPolicy.Name,
	NameBatch,
}

func NewKafkaConsumer(
	ctx context.Context,
	consumerName string,
	contract *setup.Setup,
) (consumerProcess graceful.ProcessStartStopper, err error) {
	switch consumerName {
	case NameBatch:
		consumerProcess, err = kafkaconsumer.NewBatch(ctx, contract.Config, contract.Service.Batch, contract.Metrics, nil)
	default:
		policy, errPolicy := kafkaconsumer.PolicyByName(consumerName)
		if errPolicy != nil {
			err = fmt.Errorf("consumer type name for %s not found: %w", consumerName, errPolicy)
			return
		}

		consumerProcess, err = kafkaconsumer.New(
			ctx,
			contract.Config,
			policy,
			contract.Service.Transaction,
			contract.Tracker,
			contract.DLQ,
			contract.Metrics,
			nil,
		)
	}

	return
}
