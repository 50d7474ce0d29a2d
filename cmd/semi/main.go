// Command semi evaluates semiconductor device models and small bias circuits.
package main

func main() {
	Execute()
}
