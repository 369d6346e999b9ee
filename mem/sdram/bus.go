package sdram

// BusRequest is what the client drives.
type BusRequest struct {
	Address     uint32
	WriteData   uint32
	WriteEnable bool
	Valid       bool
	BusActive   bool
}

// BusResponse is what the controller drives.
type BusResponse struct {
	ReadData uint32
	Ack      bool
	Ready    bool
}

// Bus is the synchronous client interface of the controller. The client
// updates the request and samples the response once per clock.
type Bus struct {
	Request  BusRequest
	Response BusResponse
}
