package messaging

import (
	"fmt"
	"smartmarkers-service/internal/app/config"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NewRabbitMQ returns nil when the broker is unreachable; submission
// events are then not published.
func NewRabbitMQ(driverConfig *config.DriverConfig, log *zap.Logger) *amqp091.Connection {
	connectionString := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		driverConfig.RabbitMQ.Username,
		driverConfig.RabbitMQ.Password,
		driverConfig.RabbitMQ.Host,
		driverConfig.RabbitMQ.Port,
	)
	conn, err := amqp091.Dial(connectionString)
	if err != nil {
		log.Warn("Failed to connect to rabbitMQ, submission events disabled", zap.Error(err))
		return nil
	}
	log.Info("Successfully connected to rabbitMQ")
	return conn
}
