package usecase

import "time"

// taipei is the bot's home timezone; greetings follow Taiwan local time.
var taipei = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}()

// Greeting returns the time-of-day salutation for the given instant.
func Greeting(now time.Time) string {
	switch hour := now.In(taipei).Hour(); {
	case hour >= 5 && hour < 12:
		return "早上好 🌞"
	case hour >= 12 && hour < 18:
		return "下午好 🍱"
	case hour >= 18:
		return "晚安 🌙"
	default:
		return "凌晨好 🌞"
	}
}
