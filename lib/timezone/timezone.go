package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
}

// force the clock into Taipei time; the retail portal, the sheet labels and
// the forecast month boundaries are all Taiwan-local, and the schedulers
// this runs under are usually UTC.
func Now() time.Time {
	return time.Now().In(Location)
}
