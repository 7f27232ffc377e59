package util

import (
	"fmt"
	"time"
)

func ExampleNextSchedule() {
	now := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	d6h, _ := time.ParseDuration("6h")
	d8h, _ := time.ParseDuration("8h")
	d24h, _ := time.ParseDuration("24h")
	d30s, _ := time.ParseDuration("30s")

	fmt.Println(NextSchedule(now, d6h, d24h))
	fmt.Println(NextSchedule(now, d8h, d24h))
	fmt.Println(NextSchedule(now, 0, d30s))
	// Output:
	// 2024-03-02 06:00:00 +0000 UTC
	// 2024-03-01 08:00:00 +0000 UTC
	// 2024-03-01 07:00:30 +0000 UTC
}

func ExampleFriendlyDuration() {
	d1, _ := time.ParseDuration("48h")
	d2, _ := time.ParseDuration("26.5h")
	d3, _ := time.ParseDuration("37m1s")
	d4, _ := time.ParseDuration("1500ms")
	d5, _ := time.ParseDuration("0ms")

	fmt.Println(FriendlyDuration(d1))
	fmt.Println(FriendlyDuration(d2))
	fmt.Println(FriendlyDuration(d3))
	fmt.Println(FriendlyDuration(d4))
	fmt.Println(FriendlyDuration(d5))
	// Output:
	// 2 days
	// 1 day 2 hours
	// 37 minutes 1 second
	// 1 second
	// 0 seconds
}

func ExampleShortDuration() {
	d1, _ := time.ParseDuration("26.5h")
	d2, _ := time.ParseDuration("5h59m")
	d3, _ := time.ParseDuration("37m1s")
	d4, _ := time.ParseDuration("500ms")
	d5, _ := time.ParseDuration("500ns")

	fmt.Println(ShortDuration(d1))
	fmt.Println(ShortDuration(d2))
	fmt.Println(ShortDuration(d3))
	fmt.Println(ShortDuration(d4))
	fmt.Println(ShortDuration(d5))
	// Output:
	// 1d 2h
	// 5h 59m
	// 37m 1s
	// 500ms
	// 0s
}
