// Command segctl replays allocator traces and inspects file-backed regions.
package main

func main() {
	execute()
}
