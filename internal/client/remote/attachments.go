package remote

import (
	"context"
	"net/http"
	"net/url"
)

type uploadGrant struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type downloadGrant struct {
	URL string `json:"url"`
}

// RequestUploadURL asks the server for a presigned PUT URL for a new
// document on the given vehicle. The returned key is what gets recorded
// on the record once the upload succeeds.
func (c *HTTPStore) RequestUploadURL(ctx context.Context, vehicleID string) (key, uploadURL string, err error) {
	var grant uploadGrant
	err = c.do(ctx, http.MethodPost,
		"/api/v1/vehicles/"+url.PathEscape(vehicleID)+"/attachments", nil, &grant)
	if err != nil {
		return "", "", err
	}
	return grant.Key, grant.URL, nil
}

// RequestDownloadURL asks the server for a presigned GET URL for a stored
// document key.
func (c *HTTPStore) RequestDownloadURL(ctx context.Context, vehicleID, key string) (string, error) {
	var grant downloadGrant
	err := c.do(ctx, http.MethodGet,
		"/api/v1/vehicles/"+url.PathEscape(vehicleID)+"/attachments/url?key="+url.QueryEscape(key), nil, &grant)
	if err != nil {
		return "", err
	}
	return grant.URL, nil
}
