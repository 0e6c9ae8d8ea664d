package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	NetworkGoerli  = "goerli"
	NetworkMainnet = "mainnet"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
)

// NetworkConfig describes one network whose indexer registry is mapped.
type NetworkConfig struct {
	Name string `yaml:"name"`

	// GraphQL endpoint of the network subgraph.
	Endpoint string `yaml:"endpoint"`

	// Leaderboard participant field holding the indexer address on this network.
	AddressField string `yaml:"address_field"`

	// Score categories rendered for this network, in output order.
	ScoreCategories []string `yaml:"score_categories"`
}

func (c *NetworkConfig) Validate() error {
	if c.Name == "" {
		return errors.New("network name is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("network %q: endpoint is required", c.Name)
	}
	if c.AddressField == "" {
		return fmt.Errorf("network %q: address field is required", c.Name)
	}
	if len(c.ScoreCategories) == 0 {
		return fmt.Errorf("network %q: at least one score category is required", c.Name)
	}
	return nil
}

// NetworkConfigFor returns the built-in configuration for the named network.
// The endpoint can be overridden with INDEXER_MAP_<NETWORK>_ENDPOINT.
func NetworkConfigFor(name string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch name {
	case NetworkGoerli:
		config = &NetworkConfig{
			Name:         NetworkGoerli,
			Endpoint:     GoerliNetworkSubgraphURL,
			AddressField: GoerliAddressField,
			ScoreCategories: []string{
				ScoreCeloPhase1,
				ScoreGnosisPhase1,
				ScoreGnosisExtra,
				ScoreArbitrumPhase1,
				ScoreAvalanchePhase1,
			},
		}
	case NetworkMainnet:
		config = &NetworkConfig{
			Name:            NetworkMainnet,
			Endpoint:        MainnetNetworkSubgraphURL,
			AddressField:    MainnetAddressField,
			ScoreCategories: []string{ScoreGnosisPhase2},
		}
	default:
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s", ErrUnknownNetwork, name, NetworkGoerli, NetworkMainnet)
	}

	if endpoint := os.Getenv(EndpointEnvVar(name)); endpoint != "" {
		config.Endpoint = endpoint
	}

	return config, nil
}

// DefaultNetworks returns the built-in networks in processing order.
func DefaultNetworks() ([]NetworkConfig, error) {
	var networks []NetworkConfig
	for _, name := range []string{NetworkGoerli, NetworkMainnet} {
		cfg, err := NetworkConfigFor(name)
		if err != nil {
			return nil, err
		}
		networks = append(networks, *cfg)
	}
	return networks, nil
}

type networksFile struct {
	Networks []NetworkConfig `yaml:"networks"`
}

// LoadNetworks reads a YAML network table. An empty path yields the built-in networks.
func LoadNetworks(path string) ([]NetworkConfig, error) {
	if path == "" {
		return DefaultNetworks()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}
	if len(file.Networks) == 0 {
		return nil, fmt.Errorf("networks file %s defines no networks", path)
	}

	seen := make([]string, 0, len(file.Networks))
	for i := range file.Networks {
		n := &file.Networks[i]
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if slices.Contains(seen, n.Name) {
			return nil, fmt.Errorf("network %q defined more than once", n.Name)
		}
		seen = append(seen, n.Name)
		if endpoint := os.Getenv(EndpointEnvVar(n.Name)); endpoint != "" {
			n.Endpoint = endpoint
		}
	}

	return file.Networks, nil
}

func EndpointEnvVar(network string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(network))
	return "INDEXER_MAP_" + name + "_ENDPOINT"
}
