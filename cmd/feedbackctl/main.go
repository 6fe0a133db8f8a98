package main

import "github.com/godilite/feedback-server/cmd/feedbackctl/command"

func main() {
	command.Execute()
}
