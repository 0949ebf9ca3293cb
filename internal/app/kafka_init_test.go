package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	for _, brokers := range []string{"", " ", ",,"} {
		producer, err := initKafkaProducer(brokers, logger)
		require.NoError(t, err)
		assert.Nil(t, producer)
	}
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, splitBrokers(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Empty(t, splitBrokers(""))
}

func TestCloseKafka_Nil(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka-close"))
}
