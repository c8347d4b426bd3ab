// Command boost runs the contextual chat daemon and its control CLI.
package main

func main() {
	Execute()
}
