package gdalprocess

// #include "gdal.h"
// #include "gdal_utils.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/nci/csvgrid/processor"
)

// Gridder runs GDALGrid over OGR point sources and writes Float64
// GeoTIFFs.
type Gridder struct{}

func NewGridder() *Gridder {
	return &Gridder{}
}

func (g *Gridder) Grid(descriptorPath string, destPath string, alg processor.GridAlgorithm) error {
	C.CPLErrorReset()

	cPath := C.CString(descriptorPath)
	defer C.free(unsafe.Pointer(cPath))
	hSrcDS := C.GDALOpenEx(cPath, C.GDAL_OF_VECTOR, nil, nil, nil)
	if hSrcDS == nil {
		return fmt.Errorf("GDAL could not open point source %s: %s", descriptorPath, lastError())
	}
	defer C.GDALClose(hSrcDS)

	args := []string{"-of", "GTiff", "-ot", "Float64", "-a", alg.String()}
	var cArgs **C.char
	for _, arg := range args {
		cArg := C.CString(arg)
		cArgs = C.CSLAddString(cArgs, cArg)
		C.free(unsafe.Pointer(cArg))
	}
	defer C.CSLDestroy(cArgs)

	opts := C.GDALGridOptionsNew(cArgs, nil)
	if opts == nil {
		return fmt.Errorf("invalid grid options %v: %s", args, lastError())
	}
	defer C.GDALGridOptionsFree(opts)

	cDest := C.CString(destPath)
	defer C.free(unsafe.Pointer(cDest))

	var usageErr C.int
	hDstDS := C.GDALGrid(cDest, hSrcDS, opts, &usageErr)
	if hDstDS == nil || usageErr != 0 {
		if hDstDS != nil {
			C.GDALClose(hDstDS)
		}
		return fmt.Errorf("GDALGrid failed for %s: %s", descriptorPath, lastError())
	}

	// GTiff flushes on close
	C.GDALClose(hDstDS)
	if C.CPLGetLastErrorType() >= C.CE_Failure {
		return fmt.Errorf("GDALGrid failed writing %s: %s", destPath, lastError())
	}
	return nil
}
