/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package client retrieves Redfish resources for the validator.
//
// The crawler needs one capability, Getter, which returns the status,
// headers and body of a URI. Two implementations are provided:
//
//   - HTTP talks to a live service with optional Basic, Session or Token
//     authentication, a request rate limit and retries on transport
//     errors.
//   - Mockup serves index.json files from a mockup directory and falls
//     back to another Getter for URIs the directory does not contain.
//
// Usage:
//
//	c, err := client.NewHTTP("https://10.0.0.1",
//	    client.WithAuth(client.AuthSession, "admin", "secret"),
//	    client.WithInsecure(true),
//	    client.WithRateLimit(10, 5))
//	if err != nil {
//	    return err
//	}
//	resp, err := c.Get(ctx, "/redfish/v1/")
//
// All requests except the session login are GET. A 401 response while
// credentials are in use yields *AuthenticationError, which callers treat
// as fatal.
package client
