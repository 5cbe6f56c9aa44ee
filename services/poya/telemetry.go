package poya

import "besparks-backend/lib/restyutil"

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables request/response dumps for portal
// clients created after the call. Meant for debugging scrape issues.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
