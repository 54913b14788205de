package par

import (
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
)

// Delivery lead time for both order days: Tuesday orders arrive Thursday,
// Saturday orders arrive the following Monday.
const deliveryLeadDays = 2

// NextOrderContext answers "if I order today, when do I receive it, and
// how long must that delivery last?" for the fixed twice-weekly cadence.
// Orders go out Tuesday and Saturday; today counts as an order day when
// the weekday matches. The function is pure and total: every calendar
// date yields a context with CycleDays of 3 or 4.
func NextOrderContext(today time.Time) domain.OrderContext {
	day := Midnight(today)

	nextTue := nextWeekdayFrom(day, time.Tuesday)
	nextSat := nextWeekdayFrom(day, time.Saturday)

	orderDate := nextTue
	if nextSat.Before(nextTue) {
		orderDate = nextSat
	}
	delivery := orderDate.AddDate(0, 0, deliveryLeadDays)

	var afterThat time.Time
	switch delivery.Weekday() {
	case time.Monday:
		afterThat = delivery.AddDate(0, 0, 3) // Monday -> Thursday
	case time.Thursday:
		afterThat = delivery.AddDate(0, 0, 4) // Thursday -> Monday
	default:
		// Unreachable with the Tue/Sat cadence; snap forward to the nearer
		// of the next Monday or Thursday so a misconfigured cadence still
		// yields a sane cycle.
		nextMon := nextWeekdayAfter(delivery, time.Monday)
		nextThu := nextWeekdayAfter(delivery, time.Thursday)
		afterThat = nextMon
		if nextThu.Before(nextMon) {
			afterThat = nextThu
		}
	}

	cycleDays := daysBetween(delivery, afterThat)
	if cycleDays < 1 {
		cycleDays = 1
	}

	return domain.OrderContext{
		Today:                 day,
		NextOrderDate:         orderDate,
		NextDeliveryDate:      delivery,
		NextDeliveryAfterThat: afterThat,
		CycleDays:             cycleDays,
		CadenceType:           domain.CadenceTwiceWeekly,
		OrderWeekday:          orderDate.Weekday(),
		DeliveryWeekday:       delivery.Weekday(),
	}
}

// nextWeekdayFrom returns the first occurrence of wd on or after from.
func nextWeekdayFrom(from time.Time, wd time.Weekday) time.Time {
	offset := (int(wd) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// nextWeekdayAfter returns the first occurrence of wd strictly after from.
func nextWeekdayAfter(from time.Time, wd time.Weekday) time.Time {
	offset := (int(wd) - int(from.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return from.AddDate(0, 0, offset)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
