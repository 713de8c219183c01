package gdalprocess

// #include "gdal.h"
// #include "cpl_conv.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"os"
	"unsafe"
)

// requiredDrivers are needed to read descriptors and write rasters.
var requiredDrivers = []string{"GTiff", "OGR_VRT", "CSV"}

// InitGdal prepares the GDAL library for a run. gdalData, when set, is
// the directory of GDAL's support files.
func InitGdal(gdalData string) error {
	if len(gdalData) > 0 {
		key := C.CString("GDAL_DATA")
		val := C.CString(gdalData)
		C.CPLSetConfigOption(key, val)
		C.free(unsafe.Pointer(key))
		C.free(unsafe.Pointer(val))
	}

	// no .aux.xml sidecars next to the outputs
	setDefaultEnv("GDAL_PAM_ENABLED", "NO")
	setDefaultEnv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")

	C.GDALAllRegister()

	found := make(map[string]bool)
	for i := 0; i < int(C.GDALGetDriverCount()); i++ {
		driver := C.GDALGetDriver(C.int(i))
		found[C.GoString(C.GDALGetDriverShortName(driver))] = true
	}
	for _, name := range requiredDrivers {
		if !found[name] {
			return fmt.Errorf("GDAL driver %s is not available", name)
		}
	}
	return nil
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}

func lastError() string {
	msg := C.GoString(C.CPLGetLastErrorMsg())
	if len(msg) == 0 {
		return "unknown GDAL error"
	}
	return msg
}
