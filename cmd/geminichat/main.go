// Command geminichat is a Gemini chat client for the terminal and the browser.
package main

import "github.com/diogo/geminichat/internal/commands"

func main() {
	commands.Execute()
}
