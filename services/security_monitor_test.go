package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMonitor(t *testing.T) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewSecurityMonitor()
	m.now = func() time.Time { return clock }
	ip := "203.0.113.7"

	t.Run("BelowThreshold", func(t *testing.T) {
		for i := 0; i < securityThreshold-1; i++ {
			m.TrackRejection(ip, RejectionInvalidToken)
		}
		assert.Empty(t, m.RecentAlerts())
	})

	t.Run("ThresholdRaisesAlert", func(t *testing.T) {
		m.TrackRejection(ip, RejectionInvalidToken)
		alerts := m.RecentAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Equal(t, RejectionInvalidToken, alerts[0].Reason)
		assert.Equal(t, securityThreshold, alerts[0].Count)
	})

	t.Run("CooldownSuppressesDuplicates", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			m.TrackRejection(ip, RejectionInvalidSignature)
		}
		assert.Len(t, m.RecentAlerts(), 1)
	})

	t.Run("OldRejectionsLeaveTheWindow", func(t *testing.T) {
		other := "198.51.100.2"
		for i := 0; i < securityThreshold-1; i++ {
			m.TrackRejection(other, RejectionInvalidToken)
		}
		clock = clock.Add(securityWindow + time.Minute)
		m.TrackRejection(other, RejectionInvalidToken)
		assert.Len(t, m.RecentAlerts(), 1)
	})

	t.Run("PruneForgetsStaleState", func(t *testing.T) {
		clock = clock.Add(2 * securityAlertCooldown)
		m.Prune()
		m.mu.Lock()
		defer m.mu.Unlock()
		assert.Empty(t, m.rejections)
		assert.Empty(t, m.alertedIPs)
	})
}
