package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for seatkeep
// Pattern: seatkeep:{module}:{operation}:{identifier}:{params?}
//
// The cache only ever serves read views. Reservation decisions always go to the seat table.

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour // 1 hour - for floor plan layouts
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for capacity reports
)

// Highly Dynamic (Micro TTL: real-time sensitive)
const (
	TTL_REALTIME_SHORT = 30 * time.Second // 30 seconds - for live seat availability
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "seatkeep"
)

// ================== FLOOR PLANS MODULE ==================

// Floor Plan Cache Keys
const (
	CACHE_KEY_FLOOR_PLAN_LAYOUT = CACHE_PREFIX + ":floorplans:layout:event:" // + event-id
)

// Floor Plan Cache TTLs
const (
	TTL_FLOOR_PLAN_LAYOUT = TTL_SEMI_STATIC_SHORT // 1 hour
)

// ================== CAPACITY MODULE ==================

// Capacity Cache Keys
const (
	CACHE_KEY_CAPACITY_REPORT = CACHE_PREFIX + ":capacity:event:" // + event-id:expected:N
)

// Capacity Cache TTLs
const (
	TTL_CAPACITY_REPORT = TTL_DYNAMIC_MEDIUM // 10 minutes
)

// ================== SEATS MODULE ==================

// Seat Cache Keys
const (
	CACHE_KEY_SEAT_AVAILABILITY = CACHE_PREFIX + ":seats:availability:event:" // + event-id:section:X:tier:Y
)

// Seat Cache TTLs
const (
	TTL_SEAT_AVAILABILITY = TTL_REALTIME_SHORT // 30 seconds
)

// ================== RATE LIMIT MODULE ==================

const (
	RATE_LIMIT_KEY_FORMAT = CACHE_PREFIX + ":ratelimit:%s:%s" // type, identifier
)

// ================== CACHE INVALIDATION PATTERNS ==================

// Patterns for cache invalidation (used with Redis SCAN + DEL)
const (
	PATTERN_INVALIDATE_CAPACITY_ALL = CACHE_PREFIX + ":capacity:*"
	PATTERN_INVALIDATE_SEATS_ALL    = CACHE_PREFIX + ":seats:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildFloorPlanLayoutKey -> "seatkeep:floorplans:layout:event:<id>"
func BuildFloorPlanLayoutKey(eventID string) string {
	return CACHE_KEY_FLOOR_PLAN_LAYOUT + eventID
}

// BuildCapacityReportKey -> "seatkeep:capacity:event:<id>:expected:500"
func BuildCapacityReportKey(eventID string, expectedAttendance int) string {
	return CACHE_KEY_CAPACITY_REPORT + eventID + ":expected:" + fmt.Sprintf("%d", expectedAttendance)
}

// BuildCapacityEventPattern matches every cached capacity report of an event
func BuildCapacityEventPattern(eventID string) string {
	return CACHE_KEY_CAPACITY_REPORT + eventID + ":*"
}

// BuildSeatAvailabilityKey -> "seatkeep:seats:availability:event:<id>:section:A:tier:VIP"
func BuildSeatAvailabilityKey(eventID, section, tier string) string {
	return CACHE_KEY_SEAT_AVAILABILITY + eventID + ":section:" + section + ":tier:" + tier
}

// BuildSeatAvailabilityEventPattern matches every cached availability view of an event
func BuildSeatAvailabilityEventPattern(eventID string) string {
	return CACHE_KEY_SEAT_AVAILABILITY + eventID + ":*"
}

/*
INVALIDATION:

1. When a layout is saved or deleted:
   - Delete: seatkeep:floorplans:layout:event:<id>
   - Delete pattern: seatkeep:capacity:event:<id>:*
   - Delete pattern: seatkeep:seats:availability:event:<id>:*

2. When any seat of an event changes state:
   - Delete pattern: seatkeep:seats:availability:event:<id>:*
*/
