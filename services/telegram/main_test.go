package telegram

import (
	"fmt"
)

func Example_rewriteCommands() {
	fmt.Println(rewriteCommands("/voice_ask turn on the light"))
	fmt.Println(rewriteCommands("/sensors"))
	fmt.Println(rewriteCommands("weather"))
	// Output:
	// voice/ask turn on the light
	// sensors
	// weather
}
