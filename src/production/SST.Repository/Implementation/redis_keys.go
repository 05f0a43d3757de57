package implementation

import (
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

// Redis key layout. Every key the service touches is built by one of the
// constructors below; nothing else concatenates key strings.
const (
	apiKeyRecordPrefix      = "api_key:"
	apiAdminKeyRecordPrefix = "api_admin_key:"
	allAPIKeysSet           = "all_api_keys"
	allAdminKeysSet         = "all_admin_keys"
)

// recordKey builds the record key holding a credential's owner label.
func recordKey(scope interfaces.Scope, key string) string {
	if scope == interfaces.ScopeAdmin {
		return apiAdminKeyRecordPrefix + key
	}
	return apiKeyRecordPrefix + key
}

// memberSet names the membership set tracking all issued keys of a scope.
func memberSet(scope interfaces.Scope) string {
	if scope == interfaces.ScopeAdmin {
		return allAdminKeysSet
	}
	return allAPIKeysSet
}

// seriesKey builds the time-series key under which samples for one
// device+domain pair accumulate. Stable for a given triple so repeated
// ingests extend the same series.
func seriesKey(prefix, deviceID, domainLabel string) string {
	return prefix + ":" + deviceID + ":" + domainLabel
}
