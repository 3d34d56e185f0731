//go:build opencl

package gpu

/*
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
)

// Reset runs the reset_stage kernel (spec component B), zeroing the shared
// match counter before a filter dispatch. Single workgroup, single thread.
func (d *Device) Reset() error {
	ret := C.clEnqueueNDRangeKernel(d.queue, d.resetKernel, 1, nil,
		&[]C.size_t{1}[0], &[]C.size_t{1}[0], 0, nil, nil)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("gpu: reset dispatch failed: %d", ret)
	}
	return clError(C.clFinish(d.queue), "reset clFinish")
}

// Filter runs the filter_stage kernel over gputypes.ThreadsPerDispatch
// threads (spec component C), writing matching word2 candidates into the
// matches buffer and returning the final counter value plus the matched
// word2 values (capped at gputypes.MaxResultsFound; spec.md §4.G's overflow
// condition is the caller's responsibility to check).
func (d *Device) Filter(constants gputypes.FilterPushConstants) (count uint32, matches []uint32, err error) {
	bytes := constants.Bytes()
	if ret := C.clEnqueueWriteBuffer(d.queue, d.bufFilterConstants, C.CL_TRUE, 0,
		C.size_t(len(bytes)), unsafe.Pointer(&bytes[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return 0, nil, fmt.Errorf("gpu: write filter constants failed: %d", ret)
	}

	C.clSetKernelArg(d.filterKernel, 0, C.size_t(unsafe.Sizeof(d.bufFilterConstants)), unsafe.Pointer(&d.bufFilterConstants))
	C.clSetKernelArg(d.filterKernel, 1, C.size_t(unsafe.Sizeof(d.bufCount)), unsafe.Pointer(&d.bufCount))
	C.clSetKernelArg(d.filterKernel, 2, C.size_t(unsafe.Sizeof(d.bufMatches)), unsafe.Pointer(&d.bufMatches))
	maxResults := C.uint(gputypes.MaxResultsFound)
	C.clSetKernelArg(d.filterKernel, 3, C.size_t(unsafe.Sizeof(maxResults)), unsafe.Pointer(&maxResults))
	activeThreads := C.uint(gputypes.ThreadsPerDispatch)
	C.clSetKernelArg(d.filterKernel, 4, C.size_t(unsafe.Sizeof(activeThreads)), unsafe.Pointer(&activeThreads))

	globalSize := C.size_t(gputypes.ThreadsPerDispatch)
	if ret := C.clEnqueueNDRangeKernel(d.queue, d.filterKernel, 1, nil, &globalSize, nil, 0, nil, nil); ret != C.CL_SUCCESS {
		return 0, nil, fmt.Errorf("gpu: filter dispatch failed: %d", ret)
	}
	if err := clError(C.clFinish(d.queue), "filter clFinish"); err != nil {
		return 0, nil, err
	}

	var countWord C.uint
	if ret := C.clEnqueueReadBuffer(d.queue, d.bufCount, C.CL_TRUE, 0, 4, unsafe.Pointer(&countWord), 0, nil, nil); ret != C.CL_SUCCESS {
		return 0, nil, fmt.Errorf("gpu: read count failed: %d", ret)
	}
	count = uint32(countWord)

	readLen := count
	if readLen > gputypes.MaxResultsFound {
		readLen = gputypes.MaxResultsFound
	}
	if readLen == 0 {
		return count, nil, nil
	}
	raw := make([]uint32, readLen)
	if ret := C.clEnqueueReadBuffer(d.queue, d.bufMatches, C.CL_TRUE, 0,
		C.size_t(readLen)*4, unsafe.Pointer(&raw[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return 0, nil, fmt.Errorf("gpu: read matches failed: %d", ret)
	}
	return count, raw, nil
}

// Derivation runs the derivation_stage kernel over a (Offset, Count) tile
// of the matches buffer (spec component D, the non-indirect dispatch
// variant), returning one 64-byte master extended key per tile entry.
func (d *Device) Derivation(constants gputypes.DerivationPushConstants, tileSize uint32) ([][64]byte, error) {
	bytes := constants.Bytes()
	if ret := C.clEnqueueWriteBuffer(d.queue, d.bufDerivationConsts, C.CL_TRUE, 0,
		C.size_t(len(bytes)), unsafe.Pointer(&bytes[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("gpu: write derivation constants failed: %d", ret)
	}

	C.clSetKernelArg(d.derivationKernel, 0, C.size_t(unsafe.Sizeof(d.bufDerivationConsts)), unsafe.Pointer(&d.bufDerivationConsts))
	C.clSetKernelArg(d.derivationKernel, 1, C.size_t(unsafe.Sizeof(d.bufMatches)), unsafe.Pointer(&d.bufMatches))
	C.clSetKernelArg(d.derivationKernel, 2, C.size_t(unsafe.Sizeof(d.bufWordlist)), unsafe.Pointer(&d.bufWordlist))
	C.clSetKernelArg(d.derivationKernel, 3, C.size_t(unsafe.Sizeof(d.bufDerivationOutput)), unsafe.Pointer(&d.bufDerivationOutput))
	maxResults := C.uint(gputypes.MaxResultsFound)
	C.clSetKernelArg(d.derivationKernel, 4, C.size_t(unsafe.Sizeof(maxResults)), unsafe.Pointer(&maxResults))

	globalSize := roundUpWorkgroup(tileSize, gputypes.DerivationWorkgroupSize)
	localSize := C.size_t(gputypes.DerivationWorkgroupSize)
	if ret := C.clEnqueueNDRangeKernel(d.queue, d.derivationKernel, 1, nil, &globalSize, &localSize, 0, nil, nil); ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("gpu: derivation dispatch failed: %d", ret)
	}
	if err := clError(C.clFinish(d.queue), "derivation clFinish"); err != nil {
		return nil, err
	}

	raw := make([]uint32, uint64(tileSize)*uint64(gputypes.MasterKeyWords))
	if ret := C.clEnqueueReadBuffer(d.queue, d.bufDerivationOutput, C.CL_TRUE,
		C.size_t(uint64(constants.Offset)*uint64(gputypes.MasterKeyWords)*4),
		C.size_t(len(raw))*4, unsafe.Pointer(&raw[0]), 0, nil, nil); ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("gpu: read derivation output failed: %d", ret)
	}

	out := make([][64]byte, tileSize)
	for i := range out {
		var words [64]uint32
		copy(words[:], raw[i*64:(i+1)*64])
		out[i] = gputypes.DerivationOutputWords(words)
	}
	return out, nil
}

func roundUpWorkgroup(n, workgroup uint32) C.size_t {
	if n == 0 {
		return C.size_t(workgroup)
	}
	rounded := ((n + workgroup - 1) / workgroup) * workgroup
	return C.size_t(rounded)
}

func clError(ret C.cl_int, op string) error {
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("gpu: %s failed: %d", op, ret)
	}
	return nil
}
