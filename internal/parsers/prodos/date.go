package prodos

import "time"

// DateTimeFromProDOS decodes a four byte ProDOS date and time:
//
//	byte 0   mmmddddd   month (low 3 bits), day
//	byte 1   yyyyyyym   year, month (high bit)
//	byte 2   00MMMMMM   minute
//	byte 3   000HHHHH   hour
//
// Years below 40 are 20xx, the rest 19xx. ProDOS stores no time zone, so the
// result is in local time. Missing or invalid dates decode to the zero Time.
func DateTimeFromProDOS(b []byte) time.Time {
	if len(b) < 4 || (b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == 0) {
		return time.Time{}
	}

	year := int(b[1] >> 1)
	if year < 40 {
		year += 2000
	} else {
		year += 1900
	}
	month := int(b[1]&0x01)<<3 | int(b[0]>>5)
	day := int(b[0] & 0x1F)
	minute := int(b[2] & 0x3F)
	hour := int(b[3] & 0x1F)

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 {
		return time.Time{}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	if t.Day() != day {
		// Feb 30 and the like normalise into the next month.
		return time.Time{}
	}
	return t
}
