package mqtt

import (
	"strings"
	"testing"

	"github.com/nerrad567/rackview-core/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device saved event", topics.Event("device_saved"), "rackview/event/device_saved"},
		{"device deleted event", topics.Event("device_deleted"), "rackview/event/device_deleted"},
		{"system status", topics.SystemStatus(), "rackview/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.example.com",
			Port:     1883,
			ClientID: "rackview-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker url", func(t *testing.T) {
		opts := buildClientOptions(testMQTTConfig())

		if len(opts.Servers) != 1 {
			t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
		}
		got := opts.Servers[0].String()
		if got != "tcp://broker.example.com:1883" {
			t.Errorf("broker url = %q, want tcp://broker.example.com:1883", got)
		}
		if opts.ClientID != "rackview-test" {
			t.Errorf("client id = %q, want rackview-test", opts.ClientID)
		}
	})

	t.Run("tls switches scheme", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Broker.TLS = true
		cfg.Broker.Port = 8883

		opts := buildClientOptions(cfg)
		got := opts.Servers[0].String()
		if got != "ssl://broker.example.com:8883" {
			t.Errorf("broker url = %q, want ssl://broker.example.com:8883", got)
		}
		if opts.TLSConfig == nil {
			t.Error("expected TLS config to be set")
		}
	})

	t.Run("credentials applied when set", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Auth.Username = "rack"
		cfg.Auth.Password = "secret"

		opts := buildClientOptions(cfg)
		if opts.Username != "rack" {
			t.Errorf("username = %q, want rack", opts.Username)
		}
		if opts.Password != "secret" {
			t.Errorf("password not applied")
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	cfg := testMQTTConfig()
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if opts.WillTopic != "rackview/system/status" {
		t.Errorf("will topic = %q, want rackview/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will message should be retained")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("will payload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, `"reason":"unexpected_disconnect"`) {
		t.Errorf("will payload missing disconnect reason: %s", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("rackview-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload malformed: %s", online)
	}
	if !strings.Contains(online, `"client_id":"rackview-test"`) {
		t.Errorf("online payload missing client id: %s", online)
	}

	offline := buildOfflinePayload("rackview-test")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload missing graceful reason: %s", offline)
	}
}
