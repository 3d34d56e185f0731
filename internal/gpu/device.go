//go:build opencl

package gpu

/*
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#cgo windows LDFLAGS: -lOpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif

#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/gpu/kernels"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
)

// Device owns the OpenCL platform/device/context/queue and the three
// compiled programs (reset, filter, derivation), plus every buffer the
// pipeline shares across chunks. It is the Go analogue of wgpu::Device +
// wgpu::Queue + the original's pipeline struct — a single logical owner for
// every GPU-side resource, exactly as spec.md §9's "Mixed ownership" note
// requires.
type Device struct {
	platform C.cl_platform_id
	device   C.cl_device_id
	context  C.cl_context
	queue    C.cl_command_queue

	resetProgram      C.cl_program
	filterProgram     C.cl_program
	derivationProgram C.cl_program

	resetKernel      C.cl_kernel
	filterKernel     C.cl_kernel
	derivationKernel C.cl_kernel

	bufCount             C.cl_mem
	bufMatches           C.cl_mem
	bufWordlist          C.cl_mem
	bufDerivationOutput  C.cl_mem
	bufFilterConstants   C.cl_mem
	bufDerivationConsts  C.cl_mem
}

// Open initializes an OpenCL platform/device/context/queue, compiles the
// three kernel programs, and allocates every buffer the pipeline needs,
// sized for gputypes.MaxResultsFound results.
func Open(wordlist []gputypes.Bip39WordEntry) (*Device, error) {
	d := &Device{}

	var numPlatforms C.cl_uint
	if C.clGetPlatformIDs(0, nil, &numPlatforms) != C.CL_SUCCESS || numPlatforms == 0 {
		return nil, fmt.Errorf("gpu: no OpenCL platforms found")
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	C.clGetPlatformIDs(numPlatforms, &platforms[0], nil)
	d.platform = platforms[0]

	var numDevices C.cl_uint
	if C.clGetDeviceIDs(d.platform, C.CL_DEVICE_TYPE_GPU, 0, nil, &numDevices) != C.CL_SUCCESS || numDevices == 0 {
		// Fall back to a CPU ICD (e.g. pocl) — the opencl-tagged test suite
		// is written to run against either.
		if C.clGetDeviceIDs(d.platform, C.CL_DEVICE_TYPE_CPU, 0, nil, &numDevices) != C.CL_SUCCESS || numDevices == 0 {
			return nil, fmt.Errorf("gpu: no OpenCL devices found")
		}
		devices := make([]C.cl_device_id, numDevices)
		C.clGetDeviceIDs(d.platform, C.CL_DEVICE_TYPE_CPU, numDevices, &devices[0], nil)
		d.device = devices[0]
	} else {
		devices := make([]C.cl_device_id, numDevices)
		C.clGetDeviceIDs(d.platform, C.CL_DEVICE_TYPE_GPU, numDevices, &devices[0], nil)
		d.device = devices[0]
	}

	var ret C.cl_int
	d.context = C.clCreateContext(nil, 1, &d.device, nil, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("gpu: clCreateContext failed: %d", ret)
	}
	d.queue = C.clCreateCommandQueue(d.context, d.device, 0, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("gpu: clCreateCommandQueue failed: %d", ret)
	}

	var err error
	d.resetProgram, d.resetKernel, err = d.buildKernel(kernels.ResetProgramSource(), "reset_stage")
	if err != nil {
		return nil, fmt.Errorf("gpu: reset program: %w", err)
	}
	d.filterProgram, d.filterKernel, err = d.buildKernel(kernels.FilterProgramSource(), "filter_stage")
	if err != nil {
		return nil, fmt.Errorf("gpu: filter program: %w", err)
	}
	d.derivationProgram, d.derivationKernel, err = d.buildKernel(kernels.DerivationProgramSource(), "derivation_stage")
	if err != nil {
		return nil, fmt.Errorf("gpu: derivation program: %w", err)
	}

	if err := d.createBuffers(wordlist); err != nil {
		return nil, fmt.Errorf("gpu: buffer allocation: %w", err)
	}

	return d, nil
}

// buildKernel compiles one program from source and extracts its single
// entry-point kernel, reporting the build log on failure (the build-log
// reporting idiom this repo's cgo grounding example uses).
func (d *Device) buildKernel(source, entryPoint string) (C.cl_program, C.cl_kernel, error) {
	src := C.CString(source)
	defer C.free(unsafe.Pointer(src))

	length := C.size_t(len(source))
	var ret C.cl_int
	program := C.clCreateProgramWithSource(d.context, 1, &src, &length, &ret)
	if ret != C.CL_SUCCESS {
		return nil, nil, fmt.Errorf("clCreateProgramWithSource failed: %d", ret)
	}

	ret = C.clBuildProgram(program, 1, &d.device, nil, nil, nil)
	if ret != C.CL_SUCCESS {
		var logSize C.size_t
		C.clGetProgramBuildInfo(program, d.device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		buildLog := make([]byte, logSize)
		if logSize > 0 {
			C.clGetProgramBuildInfo(program, d.device, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&buildLog[0]), nil)
		}
		return nil, nil, fmt.Errorf("clBuildProgram failed for %s: %s", entryPoint, string(buildLog))
	}

	name := C.CString(entryPoint)
	defer C.free(unsafe.Pointer(name))
	kernel := C.clCreateKernel(program, name, &ret)
	if ret != C.CL_SUCCESS {
		return nil, nil, fmt.Errorf("clCreateKernel(%s) failed: %d", entryPoint, ret)
	}
	return program, kernel, nil
}

func (d *Device) createBuffers(wordlist []gputypes.Bip39WordEntry) error {
	var ret C.cl_int

	d.bufCount = C.clCreateBuffer(d.context, C.CL_MEM_READ_WRITE, 4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufCount: %d", ret)
	}

	matchesSize := C.size_t(gputypes.MaxResultsFound) * 4
	d.bufMatches = C.clCreateBuffer(d.context, C.CL_MEM_READ_WRITE, matchesSize, nil, &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufMatches: %d", ret)
	}

	outputSize := C.size_t(gputypes.MaxResultsFound) * C.size_t(gputypes.MasterKeyWords) * 4
	d.bufDerivationOutput = C.clCreateBuffer(d.context, C.CL_MEM_WRITE_ONLY, outputSize, nil, &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufDerivationOutput: %d", ret)
	}

	wordlistBytes := make([]byte, len(wordlist)*(8*4+4))
	for i, entry := range wordlist {
		off := i * (8*4 + 4)
		for j, w := range entry.Bytes {
			putUint32LE(wordlistBytes[off+j*4:], w)
		}
		putUint32LE(wordlistBytes[off+8*4:], entry.Length)
	}
	d.bufWordlist = C.clCreateBuffer(d.context, C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR,
		C.size_t(len(wordlistBytes)), unsafe.Pointer(&wordlistBytes[0]), &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufWordlist: %d", ret)
	}

	d.bufFilterConstants = C.clCreateBuffer(d.context, C.CL_MEM_READ_ONLY, 5*4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufFilterConstants: %d", ret)
	}
	d.bufDerivationConsts = C.clCreateBuffer(d.context, C.CL_MEM_READ_ONLY, 6*4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return fmt.Errorf("bufDerivationConsts: %d", ret)
	}

	return nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Close releases every OpenCL object this Device owns. Safe to call once;
// not safe to call concurrently with any in-flight pass.
func (d *Device) Close() {
	release := func(mem C.cl_mem) {
		if mem != nil {
			C.clReleaseMemObject(mem)
		}
	}
	release(d.bufCount)
	release(d.bufMatches)
	release(d.bufWordlist)
	release(d.bufDerivationOutput)
	release(d.bufFilterConstants)
	release(d.bufDerivationConsts)

	if d.resetKernel != nil {
		C.clReleaseKernel(d.resetKernel)
	}
	if d.filterKernel != nil {
		C.clReleaseKernel(d.filterKernel)
	}
	if d.derivationKernel != nil {
		C.clReleaseKernel(d.derivationKernel)
	}
	if d.resetProgram != nil {
		C.clReleaseProgram(d.resetProgram)
	}
	if d.filterProgram != nil {
		C.clReleaseProgram(d.filterProgram)
	}
	if d.derivationProgram != nil {
		C.clReleaseProgram(d.derivationProgram)
	}
	if d.queue != nil {
		C.clReleaseCommandQueue(d.queue)
	}
	if d.context != nil {
		C.clReleaseContext(d.context)
	}
}
