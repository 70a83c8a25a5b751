package main

import (
	"fmt"
	"net/http"
	"time"
)

// Waits until the people service answers on its root endpoint.
func main() {
	totalWaitTime := 0
	for {
		res, err := http.Get("http://localhost:8080/")
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			} else {
				fmt.Println(res.Status)
			}
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
