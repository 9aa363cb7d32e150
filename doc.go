// Package hostconf is a host provisioning configuration server.
//
// # Overview
//
// hostconf answers the question "what should this machine be?" for network
// installers and first-boot agents. A machine identifies itself by the MAC
// address of one of its interfaces; hostconf looks the address up in a single
// YAML inventory and renders the matching host record into the document the
// caller asked for.
//
// The server consists of four layers:
//   - Inventory: YAML loading, schema validation and the MAC index
//   - Projection: per-document views of a host record
//   - Render: embedded (or operator supplied) text templates
//   - API Server: Echo routes, request log stream and metrics
//
// # Architecture
//
//	┌─────────────────┐
//	│  installer /    │
//	│  cloud-init     │
//	└────────┬────────┘
//	         │ GET /user-data/<mac>
//	┌────────▼────────┐       ┌─────────────────┐
//	│  API Server     │──────►│  /log websocket │
//	│  (Echo)         │       │  /metrics       │
//	└────────┬────────┘       └─────────────────┘
//	         │
//	┌────────▼────────┐
//	│  provision      │  index → projection → render
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐
//	│  hostconf.yml   │
//	└─────────────────┘
//
// # Usage
//
// Validate the inventory:
//
//	hostconf validate hostconf.yml
//
// Start the server:
//
//	hostconf serve --config configs/config.yaml
//
// Preview a document:
//
//	hostconf render user-data aa:bb:cc:dd:ee:ff
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (HC_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  port: 8000
//	inventory:
//	  path: /etc/hostconf/hostconf.yml
//	  mac_policy: normalized
//	render:
//	  expose_is_router: true
//
// # Endpoints
//
// Documents:
//   - GET /osconfig/:mac         - shell KEY=value fragment (text/plain)
//   - GET /network-config/:mac   - netplan v2 network config (text/yaml)
//   - GET /user-data/:mac        - cloud-init #cloud-config (text/yaml)
//   - GET /meta-data/:mac        - cloud-init NoCloud meta-data (text/yaml)
//   - GET /unattend/:mac         - Windows unattend.xml (application/xml)
//   - PUT /unattend/:mac         - render a caller template (when enabled)
//
// Raw fields:
//   - GET /install/:mac
//   - GET /install_to/:mac
//   - GET /config/:mac
//
// Operations:
//   - GET /health    - inventory counts
//   - GET /log       - request log page and websocket stream
//   - GET /metrics   - prometheus metrics
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o hostconf ./cmd/hostconf
package hostconf
