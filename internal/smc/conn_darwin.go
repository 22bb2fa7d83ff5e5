//go:build darwin && cgo

package smc

/*
#cgo LDFLAGS: -framework IOKit

#include <stdint.h>
#include <IOKit/IOKitLib.h>

// Fixed-layout records exchanged with AppleSMC. Field order and widths must
// match the kernel ABI exactly.
typedef struct {
	uint32_t data_size;
	uint32_t data_type;
	uint8_t  data_attributes;
} smc_key_info_t;

typedef struct {
	uint32_t       key;
	uint8_t        vers[6];
	uint8_t        p_limit_data[16];
	smc_key_info_t key_info;
	uint8_t        result;
	uint8_t        status;
	uint8_t        data8;
	uint32_t       data32;
	uint8_t        bytes[32];
} smc_key_data_t;

static kern_return_t smc_open(io_connect_t *conn) {
	io_service_t service = IOServiceGetMatchingService(0, IOServiceMatching("AppleSMC"));
	if (service == 0) {
		return kIOReturnNotFound;
	}
	kern_return_t kr = IOServiceOpen(service, mach_task_self(), 0, conn);
	IOObjectRelease(service);
	return kr;
}

// Selector 2 is the SMC user-client kernel index.
static kern_return_t smc_call(io_connect_t conn, smc_key_data_t *input, smc_key_data_t *output) {
	size_t out_size = sizeof(smc_key_data_t);
	return IOConnectCallStructMethod(conn, 2, input, sizeof(smc_key_data_t), output, &out_size);
}
*/
import "C"

import (
	"codeberg.org/skarn/hwmon/internal/errors"
)

type darwinConn struct {
	conn C.io_connect_t
}

// Dial opens a session against the AppleSMC user client.
func Dial() (Conn, error) {
	errFactory := errors.New()

	var conn C.io_connect_t
	kr := C.smc_open(&conn)
	if kr == C.kIOReturnNotFound {
		return nil, errFactory.New(ErrServiceNotFound)
	}
	if kr != C.KERN_SUCCESS {
		return nil, errFactory.WithData(ErrOpenFailed, int(kr))
	}

	return &darwinConn{conn: conn}, nil
}

func (c *darwinConn) Call(input, output *KeyData) error {
	errFactory := errors.New()

	var cin, cout C.smc_key_data_t
	marshalKeyData(input, &cin)

	if kr := C.smc_call(c.conn, &cin, &cout); kr != C.KERN_SUCCESS {
		return errFactory.WithData(ErrCallFailed, int(kr))
	}

	unmarshalKeyData(&cout, output)

	return nil
}

func (c *darwinConn) Close() error {
	errFactory := errors.New()

	if kr := C.IOServiceClose(c.conn); kr != C.KERN_SUCCESS {
		return errFactory.WithData(ErrCloseFailed, int(kr))
	}

	return nil
}

func marshalKeyData(in *KeyData, out *C.smc_key_data_t) {
	out.key = C.uint32_t(in.Key)
	for i := range in.Vers {
		out.vers[i] = C.uint8_t(in.Vers[i])
	}
	for i := range in.PLimitData {
		out.p_limit_data[i] = C.uint8_t(in.PLimitData[i])
	}
	out.key_info.data_size = C.uint32_t(in.KeyInfo.DataSize)
	out.key_info.data_type = C.uint32_t(in.KeyInfo.DataType)
	out.key_info.data_attributes = C.uint8_t(in.KeyInfo.DataAttributes)
	out.result = C.uint8_t(in.Result)
	out.status = C.uint8_t(in.Status)
	out.data8 = C.uint8_t(in.Data8)
	out.data32 = C.uint32_t(in.Data32)
	for i := range in.Bytes {
		out.bytes[i] = C.uint8_t(in.Bytes[i])
	}
}

func unmarshalKeyData(in *C.smc_key_data_t, out *KeyData) {
	out.Key = Key(in.key)
	for i := range out.Vers {
		out.Vers[i] = byte(in.vers[i])
	}
	for i := range out.PLimitData {
		out.PLimitData[i] = byte(in.p_limit_data[i])
	}
	out.KeyInfo.DataSize = uint32(in.key_info.data_size)
	out.KeyInfo.DataType = Key(in.key_info.data_type)
	out.KeyInfo.DataAttributes = uint8(in.key_info.data_attributes)
	out.Result = uint8(in.result)
	out.Status = uint8(in.status)
	out.Data8 = uint8(in.data8)
	out.Data32 = uint32(in.data32)
	for i := range out.Bytes {
		out.Bytes[i] = byte(in.bytes[i])
	}
}
