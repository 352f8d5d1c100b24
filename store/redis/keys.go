package redis

// Redis key naming conventions for correlate data.
// All keys are prefixed with "correlate:" to avoid collisions.

const keyPrefix = "correlate:"

// ── Definition keys ──

// defKey returns the key for a definition identity:
// correlate:def:{eventKey}:{tenantID}
func defKey(eventKey, tenantID string) string {
	return keyPrefix + "def:" + eventKey + ":" + tenantID
}

// defIdentitiesKey is the Set tracking all definition identities
// ("{eventKey}:{tenantID}") for enumeration.
const defIdentitiesKey = keyPrefix + "def_identities"

// ── Subscription keys ──

// subKey returns the key for a subscription entity: correlate:sub:{id}
func subKey(id string) string { return keyPrefix + "sub:" + id }

// subIDsKey is the Set tracking all subscription IDs for enumeration.
const subIDsKey = keyPrefix + "sub_ids"

// subIndexKey returns the Set key tracking subscription IDs registered
// for an (eventKey, tenantID) pair: correlate:sub_idx:{eventKey}:{tenantID}
func subIndexKey(eventKey, tenantID string) string {
	return keyPrefix + "sub_idx:" + eventKey + ":" + tenantID
}

// ── Reservation keys ──

// reservationKey returns the key for an instantiation-guard
// reservation: correlate:resv:{key}
func reservationKey(key string) string { return keyPrefix + "resv:" + key }

// ── Drop log keys ──

// dropKey returns the key for a drop log entry entity: correlate:drop:{id}
func dropKey(id string) string { return keyPrefix + "drop:" + id }

// dropIDsKey is the Set tracking all drop log entry IDs for enumeration.
const dropIDsKey = keyPrefix + "drop_ids"
