package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

func apiClient() *resty.Client {
	path := APISocketPath()

	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})

	client.SetBaseURL("http://shaderpaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "shaderpaper")

	return client
}

// GetStatus queries the running daemon's status API.
func GetStatus() (*StatusResponse, error) {
	result := StatusResponse{}

	response, err := apiClient().R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error fetching status: %s", response.Status())
	}

	return &result, nil
}

// SendStop asks the running daemon to shut down.
func SendStop() error {
	response, err := apiClient().R().Post("/stop")
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending stop: %s", response.Status())
	}
	return nil
}
