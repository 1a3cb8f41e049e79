package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMonitor(t *testing.T) {
	m := NewSecurityEventMonitor()
	ip := "127.0.0.1"

	t.Run("TrackFailedLogin", func(t *testing.T) {
		for i := 0; i < monitorThreshold-1; i++ {
			m.TrackFailedLogin(ip)
		}
		assert.Empty(t, m.GetRecentAlerts())

		m.TrackFailedLogin(ip)
		alerts := m.GetRecentAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Equal(t, EventFailedLogin, alerts[0].Kind)
		assert.Contains(t, alerts[0].Reason, "Multiple failed logins")
	})

	t.Run("Duplicate alerts are rate limited", func(t *testing.T) {
		for i := 0; i < monitorThreshold; i++ {
			m.TrackFailedLogin(ip)
		}
		assert.Len(t, m.GetRecentAlerts(), 1)
	})

	t.Run("Kinds are tracked separately", func(t *testing.T) {
		for i := 0; i < monitorThreshold; i++ {
			m.TrackCaptchaFailure(ip)
		}
		alerts := m.GetRecentAlerts()
		require.Len(t, alerts, 2)
		assert.Equal(t, EventCaptchaFailure, alerts[0].Kind)
		assert.Equal(t, "WARNING", alerts[0].Level)
	})
}

func TestSecurityMonitorCleanup(t *testing.T) {
	m := NewSecurityEventMonitor()
	m.events[EventFailedLogin+"|10.0.0.1"] = []time.Time{time.Now().Add(-2 * monitorWindow)}
	m.events[EventFailedLogin+"|10.0.0.2"] = []time.Time{time.Now()}
	m.alertedIPs[EventFailedLogin+"|10.0.0.3"] = time.Now().Add(-2 * alertCooldown)

	m.Cleanup()

	assert.NotContains(t, m.events, EventFailedLogin+"|10.0.0.1")
	assert.Contains(t, m.events, EventFailedLogin+"|10.0.0.2")
	assert.Empty(t, m.alertedIPs)
}

func TestNilMonitorIsNoop(t *testing.T) {
	var m *SecurityEventMonitor
	assert.NotPanics(t, func() { m.TrackFailedLogin("1.2.3.4") })
}
