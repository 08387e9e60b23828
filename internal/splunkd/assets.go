package splunkd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"

	"dashpub/internal/services"
)

// KVStoreScheme prefixes references to images stored in the Dashboard Studio
// KV store collections.
const KVStoreScheme = "splunk-enterprise-kvstore://"

const maxAssetBytes = 32 << 20

// AssetRequest identifies an asset referenced from a definition.
type AssetRequest struct {
	Reference string
	// Category is "icons" or "images"; it selects the KV store collection.
	Category string
	// Namespace is the app owning the KV store collection.
	Namespace string
}

// Asset is fetched asset content.
type Asset struct {
	Data        []byte
	ContentType string
}

// FetchAsset resolves a reference to bytes. data: URIs are decoded without
// network access; KV store references are read from the
// splunk-dashboard-<category> collection of the namespace; http(s) URLs are
// downloaded directly, with splunkd credentials only for the splunkd host.
func (c *Client) FetchAsset(ctx context.Context, req AssetRequest) (*Asset, error) {
	const operation = "fetch asset"
	ref := strings.TrimSpace(req.Reference)
	switch {
	case ref == "":
		return nil, services.Wrap(services.ErrFetch, component, operation, "empty reference", nil)
	case strings.HasPrefix(ref, "data:"):
		asset, err := DecodeDataURI(ref)
		if err != nil {
			return nil, services.Wrap(services.ErrFetch, component, operation, "decode data uri", err)
		}
		return asset, nil
	case strings.HasPrefix(ref, KVStoreScheme):
		return c.fetchKVStoreAsset(ctx, req.Category, req.Namespace, strings.TrimPrefix(ref, KVStoreScheme))
	}

	parsed, err := url.Parse(ref)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, services.Wrap(services.ErrFetch, component, operation,
			fmt.Sprintf("unsupported asset reference %q", ref), nil)
	}
	resp, err := c.get(ctx, operation, parsed.String(), strings.EqualFold(parsed.Host, c.baseURL.Host))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, operation, "read body", err)
	}
	if len(data) > maxAssetBytes {
		return nil, services.Wrap(services.ErrFetch, component, operation,
			fmt.Sprintf("asset exceeds %d bytes", maxAssetBytes), nil)
	}
	contentType := resp.Header.Get("Content-Type")
	if media, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = media
	}
	return &Asset{Data: data, ContentType: contentType}, nil
}

func (c *Client) fetchKVStoreAsset(ctx context.Context, category, namespace, id string) (*Asset, error) {
	const operation = "fetch kvstore asset"
	id = strings.TrimSpace(id)
	if id == "" || category == "" || namespace == "" {
		return nil, services.Wrap(services.ErrFetch, component, operation, "kvstore reference needs id, category and namespace", nil)
	}
	collection := "splunk-dashboard-" + category
	target := c.endpoint("servicesNS", "nobody", namespace, "storage", "collections", "data", collection, id)

	var record struct {
		DataURI string `json:"dataURI"`
	}
	if err := c.getJSON(ctx, operation, target, &record); err != nil {
		return nil, err
	}
	asset, err := DecodeDataURI(record.DataURI)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, operation, fmt.Sprintf("%s/%s", collection, id), err)
	}
	return asset, nil
}

// DecodeDataURI decodes an RFC 2397 data URI.
func DecodeDataURI(uri string) (*Asset, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, errors.New("missing data: prefix")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("missing ',' separator")
	}
	isBase64 := false
	if trimmed, found := strings.CutSuffix(header, ";base64"); found {
		header = trimmed
		isBase64 = true
	}
	contentType := "text/plain"
	if header != "" {
		media, _, err := mime.ParseMediaType(header)
		if err != nil {
			return nil, fmt.Errorf("parse media type %q: %w", header, err)
		}
		contentType = media
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("decode base64 payload: %w", err)
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescape payload: %w", err)
		}
		data = []byte(unescaped)
	}
	return &Asset{Data: data, ContentType: contentType}, nil
}
