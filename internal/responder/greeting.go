package responder

import (
	"fmt"
	"time"
)

const introMessage = "Halo! Perkenalkan Saya MidiLand Assisten, asisten virtual yang siap membantu Anda!"

// Greeting returns a seeder producing the two greeting messages a fresh
// conversation starts with: a time-of-day salutation (personalized when the
// visitor name is known) followed by the assistant intro.
func Greeting(visitorName string) func(now time.Time) []string {
	return func(now time.Time) []string {
		salutation := timeOfDayGreeting(now)
		if visitorName != "" {
			salutation = fmt.Sprintf("%s, %s!", salutation, visitorName)
		} else {
			salutation += "!"
		}
		return []string{salutation, introMessage}
	}
}

func timeOfDayGreeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 11:
		return "Selamat Pagi"
	case hour >= 11 && hour < 15:
		return "Selamat Siang"
	case hour >= 15 && hour < 18:
		return "Selamat Sore"
	default:
		return "Selamat Malam"
	}
}
