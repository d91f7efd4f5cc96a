package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	securityWindow        = 10 * time.Minute
	securityThreshold     = 5
	securityAlertCooldown = time.Hour
	securityAlertHistory  = 100
)

// Rejection reasons tracked by the monitor
const (
	RejectionInvalidToken     = "invalid_token"
	RejectionInvalidSignature = "invalid_webhook_signature"
)

// SecurityEventMonitor counts rejected credentials per source IP and raises an
// alert when one source crosses the threshold inside the window
type SecurityEventMonitor struct {
	mu         sync.Mutex
	rejections map[string][]time.Time // IP -> rejection timestamps
	alertedIPs map[string]time.Time   // IP -> last alert
	alerts     []SecurityAlert        // newest first
	now        func() time.Time
}

// SecurityAlert is one raised alert
type SecurityAlert struct {
	Timestamp time.Time `json:"horodatage"`
	IP        string    `json:"ip"`
	Reason    string    `json:"motif"`
	Count     int       `json:"occurrences"`
}

// Monitor is the process-wide monitor fed by the auth middleware and the webhook endpoint
var Monitor = NewSecurityMonitor()

func NewSecurityMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		rejections: make(map[string][]time.Time),
		alertedIPs: make(map[string]time.Time),
		now:        time.Now,
	}
}

// TrackRejection records a rejected credential from ip
func (m *SecurityEventMonitor) TrackRejection(ip, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-securityWindow)
	recent := m.rejections[ip][:0]
	for _, t := range m.rejections[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.rejections[ip] = recent

	if len(recent) >= securityThreshold {
		m.raiseLocked(now, ip, reason, len(recent))
	}
}

// raiseLocked records an alert unless ip was alerted within the cooldown
func (m *SecurityEventMonitor) raiseLocked(now time.Time, ip, reason string, count int) {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < securityAlertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason, Count: count}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > securityAlertHistory {
		m.alerts = m.alerts[:securityAlertHistory]
	}

	zap.L().Warn("security alert: repeated rejected credentials",
		zap.String("ip", ip),
		zap.String("reason", reason),
		zap.Int("count", count))
}

// RecentAlerts returns a copy of the alert history
func (m *SecurityEventMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alerts := make([]SecurityAlert, len(m.alerts))
	copy(alerts, m.alerts)
	return alerts
}

// Prune drops counters and cooldowns that can no longer matter. Called by the hourly job.
func (m *SecurityEventMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip, attempts := range m.rejections {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > securityWindow {
			delete(m.rejections, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > securityAlertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
