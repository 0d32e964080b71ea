// Package mdns advertises the leaderboard on the local network so clubhouse
// displays can find it without typing an address.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the mDNS service type for leaderboard servers.
	ServiceType = "_jdcvo._tcp"

	// APIVersion is the JSON API version advertised in TXT records.
	APIVersion = "v1"
)

// Advertisement describes what is published in the TXT records.
type Advertisement struct {
	Name       string // human-readable board name, usually the tournament title
	Port       int
	StreamPath string
}

// Service manages mDNS advertisement for the leaderboard server.
type Service struct {
	instanceID string
	server     *mdns.Server
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewService creates a new mDNS service with a fresh instance id. The id
// changes with every process start; it only distinguishes boards on one LAN.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// InstanceID returns the id advertised in the "id" TXT record.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// TXTRecords builds the TXT records for ad.
func (s *Service) TXTRecords(ad Advertisement) []string {
	records := []string{
		"id=" + s.instanceID,
		"name=" + ad.Name,
		"api=" + APIVersion,
	}
	if ad.StreamPath != "" {
		records = append(records, "stream="+ad.StreamPath)
	}
	return records
}

// Start begins advertising. Errors are usually non-fatal: multicast is often
// unavailable in containers.
func (s *Service) Start(ad Advertisement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
	}

	host, err := os.Hostname()
	if err != nil {
		host = "jdcvo-leaderboard"
	}

	service, err := mdns.NewMDNSService(
		host,        // instance name
		ServiceType, // service type
		"",          // domain (empty = .local)
		"",          // host (empty = system hostname)
		ad.Port,
		nil, // all interfaces
		s.TXTRecords(ad),
	)
	if err != nil {
		return fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}
	s.server = server

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", ad.Port,
		"name", ad.Name,
		"id", s.instanceID,
	)
	return nil
}

// Running reports whether an advertisement is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil
}

// Stop stops advertising. Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}
