package gdalprocess

// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_conv.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/nci/csvgrid/processor"
	"github.com/nci/csvgrid/utils"
)

// RasterIO reads and writes band 1 of single band GeoTIFFs.
type RasterIO struct{}

func NewRasterIO() *RasterIO {
	return &RasterIO{}
}

func openReadOnly(op, path string) (C.GDALDatasetH, error) {
	C.CPLErrorReset()
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	ds := C.GDALOpen(cPath, C.GA_ReadOnly)
	if ds == nil {
		return nil, &utils.RasterIOError{Op: op, Path: path, Err: fmt.Errorf("GDAL could not open dataset: %s", lastError())}
	}
	return ds, nil
}

func readInfo(ds C.GDALDatasetH, path string) (*processor.RasterInfo, error) {
	if C.GDALGetRasterCount(ds) < 1 {
		return nil, &utils.RasterIOError{Op: "open", Path: path, Err: fmt.Errorf("dataset has no bands")}
	}

	info := &processor.RasterInfo{
		Width:   int(C.GDALGetRasterXSize(ds)),
		Height:  int(C.GDALGetRasterYSize(ds)),
		ProjWKT: C.GoString(C.GDALGetProjectionRef(ds)),
	}

	geoTrans := make([]float64, 6)
	if gdalErr := C.GDALGetGeoTransform(ds, (*C.double)(&geoTrans[0])); gdalErr != 0 {
		return nil, &utils.RasterIOError{Op: "open", Path: path, Err: fmt.Errorf("Couldn't get the geotransform: %s", lastError())}
	}
	copy(info.GeoTransform[:], geoTrans)

	bandH := C.GDALGetRasterBand(ds, C.int(1))
	var hasNoData C.int
	noData := C.GDALGetRasterNoDataValue(bandH, &hasNoData)
	info.NoData = float64(noData)
	info.HasNoData = hasNoData != 0
	return info, nil
}

func (r *RasterIO) Info(path string) (*processor.RasterInfo, error) {
	ds, err := openReadOnly("open", path)
	if err != nil {
		return nil, err
	}
	defer C.GDALClose(ds)
	return readInfo(ds, path)
}

func (r *RasterIO) ReadBand(path string) (*processor.RasterGrid, error) {
	ds, err := openReadOnly("read", path)
	if err != nil {
		return nil, err
	}
	defer C.GDALClose(ds)

	info, err := readInfo(ds, path)
	if err != nil {
		return nil, err
	}

	grid := &processor.RasterGrid{RasterInfo: *info, Data: make([]float64, info.Width*info.Height)}
	if len(grid.Data) == 0 {
		return grid, nil
	}

	bandH := C.GDALGetRasterBand(ds, C.int(1))
	gdalErr := C.GDALRasterIO(bandH, C.GF_Read, 0, 0, C.int(info.Width), C.int(info.Height), unsafe.Pointer(&grid.Data[0]), C.int(info.Width), C.int(info.Height), C.GDT_Float64, 0, 0)
	if gdalErr != 0 {
		return nil, &utils.RasterIOError{Op: "read", Path: path, Err: fmt.Errorf("GDALRasterIO: %s", lastError())}
	}
	return grid, nil
}

func (r *RasterIO) ReadPixel(path string, col, row int) (float64, error) {
	ds, err := openReadOnly("read", path)
	if err != nil {
		return 0, err
	}
	defer C.GDALClose(ds)

	width, height := int(C.GDALGetRasterXSize(ds)), int(C.GDALGetRasterYSize(ds))
	if col < 0 || row < 0 || col >= width || row >= height {
		return 0, &utils.OutOfBoundsError{Path: path, Col: col, Row: row, Width: width, Height: height}
	}

	var value float64
	bandH := C.GDALGetRasterBand(ds, C.int(1))
	gdalErr := C.GDALRasterIO(bandH, C.GF_Read, C.int(col), C.int(row), 1, 1, unsafe.Pointer(&value), 1, 1, C.GDT_Float64, 0, 0)
	if gdalErr != 0 {
		return 0, &utils.RasterIOError{Op: "read", Path: path, Err: fmt.Errorf("GDALRasterIO: %s", lastError())}
	}
	return value, nil
}

// WriteBand creates a Float64 GeoTIFF at path holding grid. The
// projection is re-derived from grid.ProjWKT.
func (r *RasterIO) WriteBand(path string, grid *processor.RasterGrid) error {
	if grid.Width <= 0 || grid.Height <= 0 || len(grid.Data) != grid.Width*grid.Height {
		return &utils.RasterIOError{Op: "write", Path: path, Err: fmt.Errorf("invalid %dx%d grid with %d cells", grid.Width, grid.Height, len(grid.Data))}
	}

	C.CPLErrorReset()
	driverNameC := C.CString("GTiff")
	defer C.free(unsafe.Pointer(driverNameC))
	hDriver := C.GDALGetDriverByName(driverNameC)
	if hDriver == nil {
		return &utils.RasterIOError{Op: "write", Path: path, Err: fmt.Errorf("GTiff driver is not registered")}
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDstDS := C.GDALCreate(hDriver, cPath, C.int(grid.Width), C.int(grid.Height), 1, C.GDT_Float64, nil)
	if hDstDS == nil {
		return &utils.RasterIOError{Op: "write", Path: path, Err: fmt.Errorf("Error creating raster: %s", lastError())}
	}

	err := fillDataset(hDstDS, grid)
	C.GDALClose(hDstDS)
	if err == nil && C.CPLGetLastErrorType() >= C.CE_Failure {
		err = fmt.Errorf("closing dataset: %s", lastError())
	}
	if err != nil {
		return &utils.RasterIOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func fillDataset(hDstDS C.GDALDatasetH, grid *processor.RasterGrid) error {
	var gdalErr C.CPLErr

	if len(grid.ProjWKT) > 0 {
		wktC := C.CString(grid.ProjWKT)
		hSRS := C.OSRNewSpatialReference(wktC)
		C.free(unsafe.Pointer(wktC))
		if hSRS == nil {
			return fmt.Errorf("Couldn't import projection: %s", lastError())
		}
		defer C.OSRDestroySpatialReference(hSRS)

		var projWKT *C.char
		C.OSRExportToWkt(hSRS, &projWKT)
		defer C.VSIFree(unsafe.Pointer(projWKT))
		if gdalErr = C.GDALSetProjection(hDstDS, projWKT); gdalErr != 0 {
			return fmt.Errorf("Couldn't set a projection: %s", lastError())
		}
	}

	geoTrans := make([]float64, 6)
	copy(geoTrans, grid.GeoTransform[:])
	if gdalErr = C.GDALSetGeoTransform(hDstDS, (*C.double)(&geoTrans[0])); gdalErr != 0 {
		return fmt.Errorf("Couldn't set the geotransform: %s", lastError())
	}

	bandH := C.GDALGetRasterBand(hDstDS, C.int(1))
	if grid.HasNoData {
		if gdalErr = C.GDALSetRasterNoDataValue(bandH, C.double(grid.NoData)); gdalErr != 0 {
			return fmt.Errorf("Couldn't set the nodata value: %s", lastError())
		}
	}

	gdalErr = C.GDALRasterIO(bandH, C.GF_Write, 0, 0, C.int(grid.Width), C.int(grid.Height), unsafe.Pointer(&grid.Data[0]), C.int(grid.Width), C.int(grid.Height), C.GDT_Float64, 0, 0)
	if gdalErr != 0 {
		return fmt.Errorf("GDALRasterIO: %s", lastError())
	}
	return nil
}
