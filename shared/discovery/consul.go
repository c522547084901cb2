package discovery

import (
	"fmt"

	consul "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes a service instance announced to Consul.
type Registration struct {
	Name string
	Host string
	Port int
	// HealthPath is polled over HTTP by the Consul agent.
	HealthPath string
}

// ID returns the instance id, unique per host and port.
func (r Registration) ID() string {
	return fmt.Sprintf("%s-%s-%d", r.Name, r.Host, r.Port)
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	client *consul.Client
	logger *zerolog.Logger
}

func NewConsulRegistry(address string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = address

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// Register announces the instance with an HTTP health check.
func (c *ConsulRegistry) Register(reg Registration) error {
	registration := &consul.AgentServiceRegistration{
		ID:      reg.ID(),
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.Port,
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", reg.Host, reg.Port, reg.HealthPath),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register %s with consul: %w", reg.ID(), err)
	}

	c.logger.Info().Str("service_id", reg.ID()).Msg("registered with consul")
	return nil
}

// Deregister removes the instance. Errors are logged only.
func (c *ConsulRegistry) Deregister(reg Registration) {
	if err := c.client.Agent().ServiceDeregister(reg.ID()); err != nil {
		c.logger.Warn().Err(err).Str("service_id", reg.ID()).Msg("failed to deregister from consul")
		return
	}

	c.logger.Info().Str("service_id", reg.ID()).Msg("deregistered from consul")
}
