// driversim publishes synthetic driver GPS reports to the MQTT broker so the
// dispatch server's live tracking can be exercised without real phones.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// Airport pickup zones to start drivers near.
var airports = []models.GeoPoint{
	{Lat: 40.6413, Lng: -73.7781}, // JFK
	{Lat: 40.7769, Lng: -73.8740}, // LGA
	{Lat: 40.6895, Lng: -74.1745}, // EWR
	{Lat: 33.9416, Lng: -118.4085}, // LAX
	{Lat: 41.9742, Lng: -87.9073}, // ORD
	{Lat: 32.8998, Lng: -97.0403}, // DFW
	{Lat: 25.7959, Lng: -80.2870}, // MIA
	{Lat: 47.4502, Lng: -122.3088}, // SEA
}

func jitter(base models.GeoPoint, meters float64) models.GeoPoint {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	return models.GeoPoint{
		Lat: base.Lat + (rand.Float64()*2-1)*(meters/latMetersPerDeg),
		Lng: base.Lng + (rand.Float64()*2-1)*(meters/lngMetersPerDeg),
	}
}

type driverState struct {
	driverID string
	position models.GeoPoint
	heading  models.GeoPoint // current destination
	speedKmh float64
}

func newDriverState(i int) *driverState {
	start := jitter(airports[rand.Intn(len(airports))], 800)
	return &driverState{
		driverID: fmt.Sprintf("sim-driver-%d", i+1),
		position: start,
		heading:  jitter(start, 15000),
		speedKmh: 25 + rand.Float64()*40,
	}
}

// step moves the driver toward its heading, picking a fresh destination on
// arrival.
func (s *driverState) step(tick time.Duration) {
	s.speedKmh += (rand.Float64()*2 - 1) * 3
	if s.speedKmh < 10 {
		s.speedKmh = 10
	}
	if s.speedKmh > 90 {
		s.speedKmh = 90
	}

	distKm := s.speedKmh * tick.Seconds() / 3600.0
	dLat := s.heading.Lat - s.position.Lat
	dLng := s.heading.Lng - s.position.Lng
	remainingKm := math.Hypot(dLat*111.32, dLng*111.32*math.Cos(s.position.Lat*math.Pi/180))
	if remainingKm <= distKm || remainingKm == 0 {
		s.position = s.heading
		s.heading = jitter(s.position, 15000)
		return
	}
	t := distKm / remainingKm
	s.position.Lat += dLat * t
	s.position.Lng += dLng * t
}

func simulate(client mqtt.Client, companyID string, s *driverState, tick time.Duration) {
	topic := fmt.Sprintf("fleet/gps/%s/%s", companyID, s.driverID)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for range ticker.C {
		s.step(tick)
		payload, err := json.Marshal(models.GPSUpdate{
			DriverID:   s.driverID,
			Location:   s.position,
			Speed:      s.speedKmh,
			RecordedAt: time.Now(),
		})
		if err != nil {
			log.WithError(err).Error("Failed to marshal GPS update")
			continue
		}
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.WithError(token.Error()).Warn("Failed to publish GPS update")
			continue
		}
		log.WithFields(log.Fields{
			"driver_id": s.driverID,
			"lat":       s.position.Lat,
			"lng":       s.position.Lng,
			"speed":     s.speedKmh,
		}).Debug("Published GPS update")
	}
}

func main() {
	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if brokerURL == "" {
		brokerURL = "tcp://localhost:1883"
	}
	companyID := os.Getenv("SIM_COMPANY_ID")
	if companyID == "" {
		companyID = "demo-company"
	}
	driverCount := 5
	if v := os.Getenv("SIM_DRIVERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			driverCount = n
		}
	}
	tick := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			tick = time.Duration(n) * time.Second
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("driversim-%d", time.Now().UnixNano())).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	log.WithFields(log.Fields{
		"broker":     brokerURL,
		"company_id": companyID,
		"drivers":    driverCount,
		"interval":   tick,
	}).Info("Starting driver GPS simulation")

	for i := 0; i < driverCount; i++ {
		go simulate(client, companyID, newDriverState(i), tick)
	}

	select {} // Block forever
}
