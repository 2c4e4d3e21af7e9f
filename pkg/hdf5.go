package dqm

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

type MEBinHDF5 struct {
	snapshot int32
	dcc      int32
	ix       int32
	iy       int32
	entries  float64
	mean     float64
	rms      float64
}

type MEInfoHDF5 struct {
	name  [STRLEN]byte
	kind  [KINDLEN]byte
	table [STRLEN]byte
}

type RunInfoHDF5 struct {
	run_number int32
	snapshot   int32
	events     int32
	session    [UUIDLEN]byte
}

const (
	STRLEN  = 128
	KINDLEN = 16
	UUIDLEN = 36
)

// copyHdf5String fills a fixed-size HDF5 string field, truncating s if needed.
func copyHdf5String(field []byte, s string) {
	copy(field, s)
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(&ErrOpenFile{Filename: fname, Err: err})
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(&ErrCreateGroup{GroupName: groupName, Err: err})
	}
	return g
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}
	defer file_space.Close()

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}
	defer plist.Close()

	chunks := []uint{4096}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}

	// create the dataset
	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, rowsInTable int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, rowsInTable)
}

// writeArrayToTable appends data after the first rowsInTable rows.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInTable int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating dataspace: %w", err)
	}
	defer dataspace.Close()

	// extend
	start := uint(rowsInTable)
	newsize := []uint{start + length}
	if err := dataset.Resize(newsize); err != nil {
		return fmt.Errorf("error resizing table: %w", err)
	}
	filespace := dataset.Space()
	defer filespace.Close()

	count := []uint{length}
	if err := filespace.SelectHyperslab([]uint{start}, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting hyperslab: %w", err)
	}

	return dataset.WriteSubset(data, dataspace, filespace)
}
