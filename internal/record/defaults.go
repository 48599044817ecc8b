package record

// Defaults are configured values used for request fields left empty.
type Defaults struct {
	Dir       string
	IndexFile string
	Template  string
	Strategy  string
	Status    string
}

// Create fills the empty fields of req.
func (d Defaults) Create(req CreateRequest) CreateRequest {
	fill(&req.Dir, d.Dir)
	fill(&req.IndexFile, d.IndexFile)
	fill(&req.Template, d.Template)
	fill(&req.Strategy, d.Strategy)
	fill(&req.Status, d.Status)
	return req
}

// Bootstrap fills the empty fields of req.
func (d Defaults) Bootstrap(req BootstrapRequest) BootstrapRequest {
	fill(&req.Dir, d.Dir)
	fill(&req.IndexFile, d.IndexFile)
	fill(&req.Strategy, d.Strategy)
	return req
}

// SetStatus fills the empty fields of req.
func (d Defaults) SetStatus(req SetStatusRequest) SetStatusRequest {
	fill(&req.IndexFile, d.IndexFile)
	return req
}

// List fills the empty fields of req.
func (d Defaults) List(req ListRequest) ListRequest {
	fill(&req.Dir, d.Dir)
	return req
}

// Index fills the empty fields of req.
func (d Defaults) Index(req IndexRequest) IndexRequest {
	fill(&req.Dir, d.Dir)
	fill(&req.IndexFile, d.IndexFile)
	return req
}

func fill(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
