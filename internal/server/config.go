package server

type Config struct {
	Bind    string
	SSLCert string
	SSLKey  string
	Proxy   bool
	PProf   bool
	CORS    bool
}
