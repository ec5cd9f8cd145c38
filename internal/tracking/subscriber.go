package tracking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// gpsTopic matches fleet/gps/<companyID>/<driverID>.
const gpsTopic = "fleet/gps/+/+"

// Subscriber consumes GPS reports from the MQTT broker into a Store.
type Subscriber struct {
	client mqtt.Client
	store  *Store
	log    *logrus.Logger
}

// NewSubscriber connects to the broker and starts consuming position
// reports. The returned subscriber owns the connection; call Close on
// shutdown.
func NewSubscriber(brokerURL string, store *Store, logger *logrus.Logger) (*Subscriber, error) {
	s := &Subscriber{store: store, log: logger}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("dispatch-server-%d", time.Now().UnixNano())).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			if token := c.Subscribe(gpsTopic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
				logger.WithField("error", token.Error().Error()).Error("Failed to subscribe to GPS topic")
			}
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.WithField("broker", brokerURL).Info("Connected to MQTT broker")
	return s, nil
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	companyID, driverID, ok := parseTopic(msg.Topic())
	if !ok {
		s.log.WithField("topic", msg.Topic()).Warn("Ignoring GPS message on malformed topic")
		return
	}

	var update models.GPSUpdate
	if err := json.Unmarshal(msg.Payload(), &update); err != nil {
		s.log.WithFields(logrus.Fields{
			"topic": msg.Topic(),
			"error": err.Error(),
		}).Warn("Ignoring malformed GPS payload")
		return
	}
	// the topic is authoritative for identity
	update.DriverID = driverID
	if update.RecordedAt.IsZero() {
		update.RecordedAt = time.Now()
	}

	s.store.Record(companyID, update)
}

func parseTopic(topic string) (companyID, driverID string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[1] != "gps" || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// Close disconnects from the broker.
func (s *Subscriber) Close() {
	s.client.Disconnect(250)
}
