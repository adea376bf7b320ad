package main

import (
	"projectdesk/connection"
)

func main() {
	connection.StartServer()
}
